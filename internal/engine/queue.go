package engine

import (
	"context"
	"sync"

	"github.com/sadopc/junkclean/internal/model"
)

// queue is an unbounded FIFO of events. Push never blocks, so a worker is
// never held up by a slow consumer.
type queue struct {
	mu    sync.Mutex
	items []model.Event
	// ready holds a token while items is non-empty.
	ready chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

func (q *queue) push(ev model.Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop removes the oldest event without blocking.
func (q *queue) pop() (model.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return ev, true
}

// next blocks until an event is available or ctx is done.
func (q *queue) next(ctx context.Context) (model.Event, error) {
	for {
		if ev, ok := q.pop(); ok {
			return ev, nil
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// drain removes and returns every queued event.
func (q *queue) drain() []model.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	select {
	case <-q.ready:
	default:
	}
	return out
}
