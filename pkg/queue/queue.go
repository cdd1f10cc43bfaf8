package queue

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Queue is a bounded FIFO between two tasks.
//
// Sends never block: when the queue is full the item being sent is dropped and
// the queued items are left untouched. Receives block until an item arrives or
// the context is done; there is no timeout.
type Queue[T any] struct {
	name    string
	items   chan T
	dropped atomic.Uint64
	onDrop  func(name string)
}

// New creates a queue holding up to capacity items.
// It panics if capacity is not positive, since queue sizes are fixed at build time.
func New[T any](name string, capacity int) *Queue[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("queue %s: invalid capacity %d", name, capacity))
	}
	return &Queue[T]{
		name:  name,
		items: make(chan T, capacity),
	}
}

// OnDrop registers a hook called every time an item is dropped.
// Must be set before the queue is shared between goroutines.
func (q *Queue[T]) OnDrop(hook func(name string)) {
	q.onDrop = hook
}

// Name returns the queue name.
func (q *Queue[T]) Name() string {
	return q.name
}

// TrySend enqueues v without blocking. It reports false if the queue was full
// and v was dropped.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.items <- v:
		return true
	default:
		q.dropped.Add(1)
		if q.onDrop != nil {
			q.onDrop(q.name)
		}
		return false
	}
}

// Receive waits for the next item. It only returns without an item when ctx is done.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-q.items:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive returns the next item if one is queued.
func (q *Queue[T]) TryReceive() (T, bool) {
	select {
	case v := <-q.items:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.items)
}

// Dropped returns how many items were dropped because the queue was full.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}
