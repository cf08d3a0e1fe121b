package throttler

import "sync"

// decision is the outcome of evaluating whether the worker may dequeue.
type decision int

const (
	decideWait decision = iota
	decideProceed
	decideTerminate
)

// queue is the FIFO of pending requests. Its mutex also guards the drain
// flag. Holders of mu may acquire the throttler's status mutex; the
// reverse order is never taken.
type queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    []T
	capacity int
	drain    bool
	closed   bool
}

// newQueue returns a queue holding at most capacity items. Zero means unbounded.
func newQueue[T any](capacity int) *queue[T] {
	q := &queue[T]{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// push appends item without blocking. It fails with a *FullQueueError
// when the queue is at capacity and with ErrAbandoned once closed.
func (q *queue[T]) push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrAbandoned
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return &FullQueueError{Capacity: q.capacity}
	}

	q.items = append(q.items, item)
	q.notEmpty.Signal()

	return nil
}

// pop blocks until decide allows the head to be taken or asks to terminate.
// decide is evaluated under the queue mutex after every wake-up.
func (q *queue[T]) pop(decide func(pending int, drain bool) decision) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for {
		switch decide(len(q.items), q.drain) {
		case decideProceed:
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			return item, true
		case decideTerminate:
			return zero, false
		}

		q.notEmpty.Wait()
	}
}

// close rejects further pushes and returns whatever was left unconsumed.
func (q *queue[T]) close() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	left := q.items
	q.items = nil

	return left
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
