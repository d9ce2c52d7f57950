package cache

import (
	"sync"

	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

// Queue is an unbounded multi-producer buffer of pending transactions.
// The lock is only held for an append or a slice swap, never across a flush.
type Queue struct {
	mu     sync.Mutex
	items  []*models.CachedTransaction
	closed bool
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends tx. It only fails once the queue has been closed.
func (q *Queue) Push(tx *models.CachedTransaction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrCacheClosed
	}
	q.items = append(q.items, tx)
	return nil
}

// DrainAll removes and returns everything queued so far, in arrival order.
func (q *Queue) DrainAll() []*models.CachedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Close drains the queue and rejects every later Push.
func (q *Queue) Close() []*models.CachedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	q.closed = true
	return items
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
