package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

// State is the lifecycle state of a Cache.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Option configures a Cache.
type Option func(*Cache)

// WithFlushInterval sets the period between scheduled flushes.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache is the write-coalescing front of a Ledger. Submit never blocks on a
// flush; Shutdown blocks until every submitted transaction has been through
// exactly one flush.
type Cache struct {
	queue     *Queue
	engine    *Engine
	scheduler *scheduler
	interval  time.Duration
	logger    logrus.FieldLogger

	flushMu      sync.Mutex // one drain-and-process pass at a time
	lifecycleMu  sync.Mutex // guards Start against Shutdown
	state        atomic.Int32
	shutdownOnce sync.Once
}

// New builds a cache in the created state. Call Start to arm the timer.
func New(ledger Ledger, opts ...Option) *Cache {
	c := &Cache{
		queue:    NewQueue(),
		interval: DefaultFlushInterval,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.engine = NewEngine(ledger, c.logger)
	c.scheduler = newScheduler(c.interval, func() {
		c.flush(context.Background())
	})
	return c
}

func (c *Cache) State() State {
	return State(c.state.Load())
}

// Start arms the periodic flush.
func (c *Cache) Start() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if !c.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		if c.State() == StateRunning {
			return nil
		}
		return ErrCacheClosed
	}
	c.scheduler.start()

	c.logger.WithFields(logrus.Fields{
		"flush_interval": c.interval.String(),
	}).Info("Transaction cache started")
	return nil
}

// Submit queues a transfer for the next flush. Calling it after Shutdown is a
// programming error and panics.
func (c *Cache) Submit(source, destination int64, amount decimal.Decimal, message string, options models.TransferOptions) {
	c.SubmitTransaction(models.NewCachedTransaction(source, destination, amount, message, options))
}

func (c *Cache) SubmitTransaction(tx *models.CachedTransaction) {
	if err := c.queue.Push(tx); err != nil {
		panic(err)
	}
}

// Pending reports how many submissions wait for the next flush.
func (c *Cache) Pending() int {
	return c.queue.Len()
}

// Flush runs one drain-and-process pass now. It waits for a scheduled flush
// already in progress. Cancelling ctx does not cancel the pass: the batch is
// already drained and ledger calls run to completion.
func (c *Cache) Flush(ctx context.Context) (FlushStats, error) {
	if c.State() == StateShutdown {
		return FlushStats{}, ErrCacheClosed
	}
	return c.flush(context.WithoutCancel(ctx)), nil
}

func (c *Cache) flush(ctx context.Context) FlushStats {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	return c.process(ctx, c.queue.DrainAll())
}

func (c *Cache) process(ctx context.Context, batch []*models.CachedTransaction) FlushStats {
	if len(batch) == 0 {
		return FlushStats{}
	}

	stats := c.engine.Process(ctx, batch)

	c.logger.WithFields(logrus.Fields{
		"drained":           stats.Drained,
		"aggregated":        stats.Aggregated,
		"transferred":       stats.Transferred,
		"account_not_found": stats.AccountNotFound,
		"transfer_failed":   stats.TransferFailed,
	}).Debug("Transaction cache flushed")
	return stats
}

// Shutdown stops the timer, waits for an in-flight flush, and flushes what is
// left on the calling goroutine. Later calls return immediately once the
// first has finished.
func (c *Cache) Shutdown() {
	c.shutdownOnce.Do(c.shutdown)
}

func (c *Cache) shutdown() {
	c.lifecycleMu.Lock()
	prev := State(c.state.Swap(int32(StateShuttingDown)))
	c.lifecycleMu.Unlock()

	if prev == StateRunning {
		c.scheduler.halt()
	}

	defer c.state.Store(int32(StateShutdown))

	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	stats := c.process(context.Background(), c.queue.Close())

	c.logger.WithFields(logrus.Fields{
		"transferred":       stats.Transferred,
		"account_not_found": stats.AccountNotFound,
		"transfer_failed":   stats.TransferFailed,
	}).Info("Transaction cache shut down")
}
