package safe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferRejectsZeroSize(t *testing.T) {
	_, err := NewBuffer(0, false)
	require.Equal(t, ErrInvalid, err)
}

func TestBufferRoundTrip(t *testing.T) {
	b, err := NewBuffer(16, false)
	require.NoError(t, err)

	n, err := b.TryWrite([]byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, 11, n)
	require.Equal(t, 11, b.Available())
	require.Equal(t, 5, b.FreeSpace())

	out := make([]byte, 16)
	n, err = b.TryRead(out)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(out[:n]))
	require.True(t, b.IsEmpty())
}

func TestBufferPartialWriteWhenNearlyFull(t *testing.T) {
	b, _ := NewBuffer(8, false)

	n, err := b.TryWrite([]byte("ABCDE"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = b.TryWrite([]byte("FGHIJ"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 0, b.FreeSpace())
	require.True(t, b.IsFull())

	n, err = b.TryWrite([]byte("K"))
	require.Equal(t, ErrFull, err)
	require.Equal(t, 0, n)

	out := make([]byte, 8)
	n, err = b.TryRead(out)
	require.NoError(t, err)
	require.Equal(t, "ABCDEFGH", string(out[:n]))
}

func TestBufferOverwriteOnFull(t *testing.T) {
	b, _ := NewBuffer(4, true)

	n, err := b.TryWrite([]byte("ABCD"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	n, err = b.TryWrite([]byte("EF"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint32(1), b.Stats().OverflowCount)

	out := make([]byte, 4)
	n, err = b.TryRead(out)
	require.NoError(t, err)
	require.Equal(t, "CDEF", string(out[:n]))
}

func TestBufferOverwriteLargerThanBuffer(t *testing.T) {
	b, _ := NewBuffer(4, true)
	require.NoError(t, errOnly(b.TryWrite([]byte("AB"))))

	n, err := b.TryWrite([]byte("CDEFGH"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, uint32(1), b.Stats().OverflowCount)

	out := make([]byte, 4)
	n, err = b.TryRead(out)
	require.NoError(t, err)
	require.Equal(t, "EFGH", string(out[:n]))
}

func TestBufferWrapAroundChunks(t *testing.T) {
	b, _ := NewBuffer(8, false)
	out := make([]byte, 8)

	// Advance head so the next write wraps at the end of storage.
	_, err := b.TryWrite([]byte("12345"))
	require.NoError(t, err)
	n, err := b.TryRead(out[:5])
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = b.TryWrite([]byte("ABCDEFG"))
	require.NoError(t, err)
	require.Equal(t, 7, n)

	n, err = b.TryRead(out)
	require.NoError(t, err)
	require.Equal(t, "ABCDEFG", string(out[:n]))
}

func TestBufferOverwriteNeverBlocks(t *testing.T) {
	b, _ := NewBuffer(4, true)
	require.NoError(t, errOnly(b.TryWrite([]byte("ABCD"))))

	start := time.Now()
	n, err := b.Write([]byte("EF"), time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestBufferBlockingWriteTimeout(t *testing.T) {
	b, _ := NewBuffer(4, false)
	require.NoError(t, errOnly(b.TryWrite([]byte("ABC"))))

	start := time.Now()
	_, err := b.Write([]byte("DE"), 50*time.Millisecond)
	require.Equal(t, ErrTimeout, err)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Equal(t, 3, b.Available())

	// A write that could never fit is rejected up front.
	_, err = b.Write(make([]byte, 5), Forever)
	require.Equal(t, ErrInvalid, err)
}

func TestBufferBlockingReadWaitsForWriter(t *testing.T) {
	b, _ := NewBuffer(8, false)
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.TryWrite([]byte("ping"))
	}()

	out := make([]byte, 8)
	n, err := b.Read(out, time.Second)
	require.NoError(t, err)
	require.Equal(t, "ping", string(out[:n]))

	_, err = b.TryRead(out)
	require.Equal(t, ErrEmpty, err)
}

func TestBufferBlockingWriteWaitsForSpace(t *testing.T) {
	b, _ := NewBuffer(4, false)
	require.NoError(t, errOnly(b.TryWrite([]byte("ABCD"))))

	done := make(chan error, 1)
	go func() {
		_, err := b.Write([]byte("EF"), time.Second)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	out := make([]byte, 2)
	_, err := b.TryRead(out)
	require.NoError(t, err)
	require.NoError(t, <-done)

	full := make([]byte, 4)
	n, err := b.TryRead(full)
	require.NoError(t, err)
	require.Equal(t, "CDEF", string(full[:n]))
}

func TestBufferCoalescedSignalsReachEveryWriter(t *testing.T) {
	b, _ := NewBuffer(4, false)
	require.NoError(t, errOnly(b.TryWrite([]byte("ABCD"))))

	// Two writers park on a full buffer. A single drained read may
	// coalesce their wakeups; the cascade must still reach both.
	done := make(chan error, 2)
	for _, p := range [][]byte{[]byte("EF"), []byte("GH")} {
		go func(p []byte) {
			_, err := b.Write(p, Forever)
			done <- err
		}(p)
	}
	time.Sleep(20 * time.Millisecond)

	out := make([]byte, 4)
	_, err := b.TryRead(out)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("blocked writer never woke")
		}
	}
	require.Equal(t, 4, b.Available())
}

func TestBufferCoalescedSignalsReachEveryReader(t *testing.T) {
	b, _ := NewBuffer(4, false)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			out := make([]byte, 1)
			_, err := b.Read(out, Forever)
			done <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, errOnly(b.TryWrite([]byte("AB"))))

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("blocked reader never woke")
		}
	}
	require.True(t, b.IsEmpty())
}

func TestBufferClearAndStats(t *testing.T) {
	b, _ := NewBuffer(4, false)
	_, err := b.TryWrite([]byte("AB"))
	require.NoError(t, err)
	b.Clear()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 4, b.FreeSpace())

	st := b.Stats()
	assert.Equal(t, uint32(1), st.WriteCount)
	assert.Equal(t, uint32(0), st.ReadCount)
}

func errOnly(_ int, err error) error { return err }
