package safe

import (
	"sync"
	"time"
)

// MaxQueueCapacity is the largest allowed queue capacity.
const MaxQueueCapacity = 32

// Item wraps a queued value with its bookkeeping.
type Item[T any] struct {
	Value T
	// Size is the caller-declared payload size in bytes.
	Size int
	// Timestamp records when the item was enqueued.
	Timestamp time.Time
	// Seq is the per-queue sequence id, assigned in enqueue order
	// starting at 1. It wraps at the uint32 boundary.
	Seq uint32
}

// QueueStats are monotonic counters. They survive Clear.
type QueueStats struct {
	TotalEnqueued uint32
	TotalDequeued uint32
	OverrunCount  uint32
}

// Queue is a bounded multi-producer/multi-consumer FIFO. The queue
// takes ownership of enqueued values; a dequeued value is no longer
// referenced by the queue.
type Queue[T any] struct {
	lock     sync.Mutex
	items    []Item[T]
	head     int
	tail     int
	count    int
	capacity int
	nextSeq  uint32
	stats    QueueStats
	notEmpty chan struct{}
	notFull  chan struct{}
}

// NewQueue creates a queue with the given capacity (1..MaxQueueCapacity).
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 || capacity > MaxQueueCapacity {
		return nil, ErrInvalid
	}
	return &Queue[T]{
		items:    make([]Item[T], capacity),
		capacity: capacity,
		nextSeq:  1,
		notEmpty: newCond(),
		notFull:  newCond(),
	}, nil
}

// TryEnqueue adds a value without blocking. A full queue bumps the
// overrun counter and returns ErrFull with no other state change.
func (q *Queue[T]) TryEnqueue(v T, size int) error {
	if size <= 0 {
		return ErrInvalid
	}
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.count == q.capacity {
		q.stats.OverrunCount++
		return ErrFull
	}
	q.push(v, size)
	return nil
}

// Enqueue adds a value, waiting up to timeout for space. Pass Forever
// to wait indefinitely. Expiry returns ErrTimeout with no state change.
func (q *Queue[T]) Enqueue(v T, size int, timeout time.Duration) error {
	if size <= 0 {
		return ErrInvalid
	}
	forever := timeout < 0
	var deadline time.Time
	if !forever {
		deadline = time.Now().Add(timeout)
	}
	q.lock.Lock()
	for q.count == q.capacity {
		cond := q.notFull
		q.lock.Unlock()
		if !await(cond, deadline, forever) {
			return ErrTimeout
		}
		q.lock.Lock()
	}
	q.push(v, size)
	q.lock.Unlock()
	return nil
}

// TryDequeue removes the oldest item without blocking.
func (q *Queue[T]) TryDequeue() (Item[T], error) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.count == 0 {
		return Item[T]{}, ErrEmpty
	}
	return q.pop(), nil
}

// Dequeue removes the oldest item, waiting up to timeout for one to
// arrive. Pass Forever to wait indefinitely.
func (q *Queue[T]) Dequeue(timeout time.Duration) (Item[T], error) {
	forever := timeout < 0
	var deadline time.Time
	if !forever {
		deadline = time.Now().Add(timeout)
	}
	q.lock.Lock()
	for q.count == 0 {
		cond := q.notEmpty
		q.lock.Unlock()
		if !await(cond, deadline, forever) {
			return Item[T]{}, ErrTimeout
		}
		q.lock.Lock()
	}
	it := q.pop()
	q.lock.Unlock()
	return it, nil
}

// Len returns the current item count.
func (q *Queue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.count
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return q.capacity }

// IsEmpty reports whether the queue holds no items.
func (q *Queue[T]) IsEmpty() bool { return q.Len() == 0 }

// IsFull reports whether the queue is at capacity.
func (q *Queue[T]) IsFull() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.count == q.capacity
}

// Clear drops all items and wakes every blocked caller so it re-checks
// its predicate. Statistics counters are not reset.
func (q *Queue[T]) Clear() {
	q.lock.Lock()
	for i := range q.items {
		q.items[i] = Item[T]{}
	}
	q.head, q.tail, q.count = 0, 0, 0
	close(q.notEmpty)
	close(q.notFull)
	q.notEmpty = newCond()
	q.notFull = newCond()
	q.lock.Unlock()
}

// Stats returns a snapshot of the monotonic counters.
func (q *Queue[T]) Stats() QueueStats {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.stats
}

func (q *Queue[T]) push(v T, size int) {
	it := &q.items[q.tail]
	it.Value = v
	it.Size = size
	it.Timestamp = time.Now()
	it.Seq = q.nextSeq
	q.nextSeq++
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.stats.TotalEnqueued++
	signal(q.notEmpty)
	// A buffered token coalesces concurrent signals. Pass the wakeup
	// on while the predicate still holds so no waiter strands.
	if q.count < q.capacity {
		signal(q.notFull)
	}
}

func (q *Queue[T]) pop() Item[T] {
	it := q.items[q.head]
	q.items[q.head] = Item[T]{}
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.stats.TotalDequeued++
	signal(q.notFull)
	if q.count > 0 {
		signal(q.notEmpty)
	}
	return it
}
