package safe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueueRejectsBadCapacity(t *testing.T) {
	_, err := NewQueue[int](0)
	require.Equal(t, ErrInvalid, err)
	_, err = NewQueue[int](MaxQueueCapacity + 1)
	require.Equal(t, ErrInvalid, err)
	q, err := NewQueue[int](MaxQueueCapacity)
	require.NoError(t, err)
	require.Equal(t, MaxQueueCapacity, q.Cap())
}

func TestQueueFIFOAndOverrun(t *testing.T) {
	q, err := NewQueue[int](4)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		require.NoError(t, q.TryEnqueue(i, 4))
	}
	require.True(t, q.IsFull())
	require.Equal(t, ErrFull, q.TryEnqueue(5, 4))
	require.Equal(t, uint32(1), q.Stats().OverrunCount)
	require.Equal(t, 4, q.Len())

	for i := 1; i <= 4; i++ {
		it, err := q.TryDequeue()
		require.NoError(t, err)
		assert.Equal(t, i, it.Value)
		assert.Equal(t, uint32(i), it.Seq)
		assert.Equal(t, 4, it.Size)
		assert.False(t, it.Timestamp.IsZero())
	}
	require.True(t, q.IsEmpty())
	_, err = q.TryDequeue()
	require.Equal(t, ErrEmpty, err)

	st := q.Stats()
	assert.Equal(t, uint32(4), st.TotalEnqueued)
	assert.Equal(t, uint32(4), st.TotalDequeued)
}

func TestQueueRejectsInvalidSize(t *testing.T) {
	q, _ := NewQueue[string](2)
	require.Equal(t, ErrInvalid, q.TryEnqueue("x", 0))
	require.Equal(t, ErrInvalid, q.Enqueue("x", -1, Forever))
	require.Equal(t, 0, q.Len())
}

func TestQueueWrapAroundKeepsOrder(t *testing.T) {
	q, _ := NewQueue[int](3)
	next := 0
	for round := 0; round < 5; round++ {
		for q.Len() < 3 {
			next++
			require.NoError(t, q.TryEnqueue(next, 1))
		}
		it, err := q.TryDequeue()
		require.NoError(t, err)
		require.Equal(t, next-2, it.Value)
	}
	// Count never escaped the capacity bound.
	require.LessOrEqual(t, q.Len(), q.Cap())
}

func TestQueueBlockingTimeout(t *testing.T) {
	q, _ := NewQueue[int](1)
	require.NoError(t, q.TryEnqueue(1, 1))

	start := time.Now()
	err := q.Enqueue(2, 1, 50*time.Millisecond)
	require.Equal(t, ErrTimeout, err)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Equal(t, 1, q.Len())

	q.Clear()
	start = time.Now()
	_, err = q.Dequeue(50 * time.Millisecond)
	require.Equal(t, ErrTimeout, err)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestQueueBlockingHandoff(t *testing.T) {
	q, _ := NewQueue[int](1)
	require.NoError(t, q.TryEnqueue(1, 1))

	done := make(chan error, 1)
	go func() {
		done <- q.Enqueue(2, 1, time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	it, err := q.Dequeue(time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, it.Value)

	require.NoError(t, <-done)
	it, err = q.Dequeue(time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, it.Value)
}

func TestQueueClearWakesWaiters(t *testing.T) {
	q, _ := NewQueue[int](1)
	require.NoError(t, q.TryEnqueue(1, 1))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs <- q.Enqueue(2, 1, time.Second)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		q.Clear()
		errs <- q.TryEnqueue(3, 1)
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	// Clear keeps the statistics counters.
	require.NotZero(t, q.Stats().TotalEnqueued)
}

func TestQueueCoalescedSignalsReachEveryProducer(t *testing.T) {
	q, _ := NewQueue[int](2)
	require.NoError(t, q.TryEnqueue(1, 1))
	require.NoError(t, q.TryEnqueue(2, 1))

	// Two producers park on a full queue. Back-to-back dequeues may
	// coalesce into a single token; the cascade must still reach both.
	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(v int) {
			done <- q.Enqueue(v, 1, Forever)
		}(10 + i)
	}
	time.Sleep(20 * time.Millisecond)

	_, err := q.TryDequeue()
	require.NoError(t, err)
	_, err = q.TryDequeue()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("blocked producer never woke")
		}
	}
	require.Equal(t, 2, q.Len())
}

func TestQueueCoalescedSignalsReachEveryConsumer(t *testing.T) {
	q, _ := NewQueue[int](2)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := q.Dequeue(Forever)
			done <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, q.TryEnqueue(1, 1))
	require.NoError(t, q.TryEnqueue(2, 1))

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("blocked consumer never woke")
		}
	}
	require.True(t, q.IsEmpty())
}

func TestQueueConcurrentProducersConsumers(t *testing.T) {
	q, _ := NewQueue[int](8)
	const (
		producers = 4
		perProd   = 100
	)
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				require.NoError(t, q.Enqueue(p*perProd+i, 1, Forever))
			}
		}(p)
	}

	got := make(map[int]bool)
	for i := 0; i < producers*perProd; i++ {
		it, err := q.Dequeue(time.Second)
		require.NoError(t, err)
		require.False(t, got[it.Value])
		got[it.Value] = true
	}
	wg.Wait()
	require.True(t, q.IsEmpty())
	st := q.Stats()
	require.Equal(t, uint32(producers*perProd), st.TotalEnqueued)
	require.Equal(t, st.TotalEnqueued, st.TotalDequeued)
}
