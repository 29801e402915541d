package safe

import (
	"sync"
	"time"
)

// BufferStats are monotonic counters. They survive Clear.
type BufferStats struct {
	WriteCount    uint32
	ReadCount     uint32
	OverflowCount uint32
}

// Buffer is a bounded circular byte stream. With overwrite enabled a
// write never blocks and never fails: the oldest unread bytes are
// discarded to make room, trading completeness for producer liveness.
type Buffer struct {
	lock      sync.Mutex
	data      []byte
	size      int
	head      int
	tail      int
	count     int
	overwrite bool
	stats     BufferStats
	notEmpty  chan struct{}
	notFull   chan struct{}
}

// NewBuffer creates a buffer holding size bytes. overwriteOnFull
// selects the drop-oldest policy for writes against a full buffer.
func NewBuffer(size int, overwriteOnFull bool) (*Buffer, error) {
	if size <= 0 {
		return nil, ErrInvalid
	}
	return &Buffer{
		data:      make([]byte, size),
		size:      size,
		overwrite: overwriteOnFull,
		notEmpty:  newCond(),
		notFull:   newCond(),
	}, nil
}

// TryWrite copies p into the buffer without blocking and returns the
// number of bytes accepted. Without overwrite a short buffer takes a
// partial write; ErrFull is returned only when nothing fit. With
// overwrite the whole of p is always accepted and the overflow counter
// is bumped once for the call if anything unread was discarded.
func (b *Buffer) TryWrite(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, ErrInvalid
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.write(p)
}

// Write copies p into the buffer, waiting up to timeout for enough free
// space. With overwrite enabled it never waits. Pass Forever to wait
// indefinitely. p larger than the whole buffer cannot be satisfied and
// is rejected with ErrInvalid (overwrite mode keeps only the tail of p).
func (b *Buffer) Write(p []byte, timeout time.Duration) (int, error) {
	if len(p) == 0 {
		return 0, ErrInvalid
	}
	if !b.overwrite && len(p) > b.size {
		return 0, ErrInvalid
	}
	forever := timeout < 0
	var deadline time.Time
	if !forever {
		deadline = time.Now().Add(timeout)
	}
	b.lock.Lock()
	for !b.overwrite && b.size-b.count < len(p) {
		cond := b.notFull
		b.lock.Unlock()
		if !await(cond, deadline, forever) {
			return 0, ErrTimeout
		}
		b.lock.Lock()
	}
	n, err := b.write(p)
	b.lock.Unlock()
	return n, err
}

// TryRead copies up to len(p) buffered bytes into p in FIFO order.
func (b *Buffer) TryRead(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, ErrInvalid
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.count == 0 {
		return 0, ErrEmpty
	}
	return b.read(p), nil
}

// Read copies up to len(p) bytes, waiting up to timeout for data.
// Pass Forever to wait indefinitely.
func (b *Buffer) Read(p []byte, timeout time.Duration) (int, error) {
	if len(p) == 0 {
		return 0, ErrInvalid
	}
	forever := timeout < 0
	var deadline time.Time
	if !forever {
		deadline = time.Now().Add(timeout)
	}
	b.lock.Lock()
	for b.count == 0 {
		cond := b.notEmpty
		b.lock.Unlock()
		if !await(cond, deadline, forever) {
			return 0, ErrTimeout
		}
		b.lock.Lock()
	}
	n := b.read(p)
	b.lock.Unlock()
	return n, nil
}

// Available returns the number of unread bytes.
func (b *Buffer) Available() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.count
}

// FreeSpace returns the number of bytes that fit without discarding.
func (b *Buffer) FreeSpace() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.size - b.count
}

// Size returns the fixed buffer size.
func (b *Buffer) Size() int { return b.size }

// IsEmpty reports whether no unread bytes remain.
func (b *Buffer) IsEmpty() bool { return b.Available() == 0 }

// IsFull reports whether the buffer is at capacity.
func (b *Buffer) IsFull() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.count == b.size
}

// Clear drops all unread bytes and wakes every blocked caller.
// Statistics counters are not reset.
func (b *Buffer) Clear() {
	b.lock.Lock()
	b.head, b.tail, b.count = 0, 0, 0
	close(b.notEmpty)
	close(b.notFull)
	b.notEmpty = newCond()
	b.notFull = newCond()
	b.lock.Unlock()
}

// Stats returns a snapshot of the monotonic counters.
func (b *Buffer) Stats() BufferStats {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.stats
}

// write copies p at tail, handling the overwrite policy and the ring
// wraparound in at most two contiguous chunks. Lock held by caller.
func (b *Buffer) write(p []byte) (int, error) {
	n := len(p)
	free := b.size - b.count
	if n > free {
		if !b.overwrite {
			n = free
			if n == 0 {
				return 0, ErrFull
			}
		} else {
			b.stats.OverflowCount++
			if n >= b.size {
				// Only the most recent size bytes survive.
				copy(b.data, p[n-b.size:])
				b.head, b.tail, b.count = 0, 0, b.size
				b.stats.WriteCount++
				signal(b.notEmpty)
				return n, nil
			}
			// Discard the oldest unread bytes to make room.
			drop := n - free
			b.head = (b.head + drop) % b.size
			b.count -= drop
		}
	}
	first := n
	if tailRoom := b.size - b.tail; first > tailRoom {
		first = tailRoom
	}
	copy(b.data[b.tail:], p[:first])
	copy(b.data, p[first:n])
	b.tail = (b.tail + n) % b.size
	b.count += n
	b.stats.WriteCount++
	signal(b.notEmpty)
	// A buffered token coalesces concurrent signals. Pass the wakeup
	// on while space remains so no waiter strands.
	if b.count < b.size {
		signal(b.notFull)
	}
	return n, nil
}

// read copies up to len(p) bytes from head. Lock held by caller,
// count known to be non-zero.
func (b *Buffer) read(p []byte) int {
	n := len(p)
	if n > b.count {
		n = b.count
	}
	first := n
	if headRoom := b.size - b.head; first > headRoom {
		first = headRoom
	}
	copy(p[:first], b.data[b.head:b.head+first])
	copy(p[first:n], b.data[:n-first])
	b.head = (b.head + n) % b.size
	b.count -= n
	b.stats.ReadCount++
	signal(b.notFull)
	if b.count > 0 {
		signal(b.notEmpty)
	}
	return n
}
