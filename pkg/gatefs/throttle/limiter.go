package throttle

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Limiter admits at most capacity operations into execution at once.
// Waiters are served in arrival order (semaphore.Weighted queues blocked
// acquirers FIFO). A Limiter's capacity is fixed for its lifetime; the
// Manager swaps in a fresh Limiter on reconfiguration.
type Limiter struct {
	capacity int64
	sem      *semaphore.Weighted
	active   atomic.Int64
	pending  atomic.Int64
}

// NewLimiter creates a limiter with the given capacity.
func NewLimiter(capacity int) *Limiter {
	return &Limiter{
		capacity: int64(capacity),
		sem:      semaphore.NewWeighted(int64(capacity)),
	}
}

// Capacity returns the admission bound.
func (l *Limiter) Capacity() int {
	return int(l.capacity)
}

// Active returns the number of operations currently executing.
func (l *Limiter) Active() int {
	return int(l.active.Load())
}

// Pending returns the number of operations queued but not yet admitted.
func (l *Limiter) Pending() int {
	return int(l.pending.Load())
}

// Idle reports whether no operation is executing or queued.
func (l *Limiter) Idle() bool {
	return l.active.Load() == 0 && l.pending.Load() == 0
}

// Enqueue registers an operation as pending. The caller must follow up
// with Acquire on the same limiter; the Manager calls Enqueue while it
// still holds its read lock so a concurrent capacity swap cannot miss
// the operation.
func (l *Limiter) Enqueue() {
	l.pending.Add(1)
}

// Acquire waits for an execution slot for a previously enqueued
// operation. On success the operation counts as active until Release;
// on context cancellation the pending registration is dropped. The
// gauges overlap on admission: active is raised before pending drops,
// so an admitted operation is never invisible to Idle and the
// Manager's idle-check-then-swap cannot strand it on a discarded
// limiter.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		l.pending.Add(-1)
		return err
	}
	l.active.Add(1)
	l.pending.Add(-1)
	return nil
}

// Release frees the slot taken by Acquire and admits the next waiter,
// if any.
func (l *Limiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}
