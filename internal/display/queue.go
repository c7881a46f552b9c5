package display

import (
	"context"
	"sync"
)

// queue runs operations one at a time in the order they were pushed.
// Pushing never blocks.
type queue struct {
	mu   sync.Mutex
	ops  []func(context.Context)
	wake chan struct{}
}

func newQueue() *queue {
	return &queue{wake: make(chan struct{}, 1)}
}

func (q *queue) push(op func(context.Context)) {
	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) pop() (func(context.Context), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ops) == 0 {
		return nil, false
	}
	op := q.ops[0]
	q.ops[0] = nil
	q.ops = q.ops[1:]
	return op, true
}

// run executes operations until ctx is cancelled. Pending operations are
// dropped on cancellation.
func (q *queue) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		op, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
			}
			continue
		}
		op(ctx)
	}
}
