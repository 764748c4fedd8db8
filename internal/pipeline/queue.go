package pipeline

import (
	"context"
	"sync"

	"github.com/vmunix/arrpush/internal/watcher"
)

// Queue is an unbounded FIFO of watch events with a single consumer.
// A push for a path that is already pending merges into that entry.
type Queue struct {
	mu     sync.Mutex
	items  []watcher.Event
	signal chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Push enqueues e without blocking.
func (q *Queue) Push(e watcher.Event) {
	q.mu.Lock()
	merged := false
	for i := range q.items {
		if q.items[i].Path == e.Path {
			q.items[i] = q.items[i].Merge(e)
			merged = true
			break
		}
	}
	if !merged {
		q.items = append(q.items, e)
	}
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Pop blocks until an event is available or ctx is done.
func (q *Queue) Pop(ctx context.Context) (watcher.Event, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items[0] = watcher.Event{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return watcher.Event{}, ctx.Err()
		case <-q.signal:
		}
	}
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
