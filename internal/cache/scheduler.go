package cache

import "time"

// DefaultFlushInterval is used when no interval is configured.
const DefaultFlushInterval = time.Second

// scheduler calls flush every interval from a single goroutine. A tick that
// arrives while flush is still running is dropped by the ticker, so at most
// one timer-driven flush is ever in flight.
type scheduler struct {
	interval time.Duration
	flush    func()
	stop     chan struct{}
	done     chan struct{}
}

func newScheduler(interval time.Duration, flush func()) *scheduler {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &scheduler{
		interval: interval,
		flush:    flush,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *scheduler) start() {
	go s.run()
}

func (s *scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// stop wins over a tick that became ready at the same time
			select {
			case <-s.stop:
				return
			default:
			}
			s.flush()
		}
	}
}

// halt disarms the ticker and waits for a running flush to return.
// It must only be called after start.
func (s *scheduler) halt() {
	close(s.stop)
	<-s.done
}
