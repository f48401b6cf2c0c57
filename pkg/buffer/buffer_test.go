package buffer

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/cyclicbuffer/errors"
	"github.com/c360/cyclicbuffer/metric"
)

func newTestBuffer[T any](t *testing.T, capacity int, opts ...Option[T]) Buffer[T] {
	t.Helper()
	buf, err := NewCircularBuffer[T](capacity, opts...)
	require.NoError(t, err, "Failed to create buffer")
	t.Cleanup(func() { _ = buf.Close() })
	return buf
}

func TestBufferInterface(t *testing.T) {
	buf := newTestBuffer[int](t, 5)

	assert.Equal(t, 0, buf.Size())
	assert.Equal(t, 5, buf.Capacity())
	assert.True(t, buf.IsEmpty())
	assert.False(t, buf.IsFull())
	assert.NotNil(t, buf.Stats())
}

func TestCircularBuffer_MinimumCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		buf := newTestBuffer[int](t, capacity)
		assert.Equal(t, 1, buf.Capacity(), "capacity %d is promoted to 1", capacity)
	}
}

func TestCircularBufferBasicOperations(t *testing.T) {
	buf := newTestBuffer[string](t, 3)

	require.NoError(t, buf.Write("first"))
	assert.Equal(t, 1, buf.Size())
	require.NoError(t, buf.Write("second"))
	require.NoError(t, buf.Write("third"))

	assert.True(t, buf.IsFull())
	assert.False(t, buf.IsEmpty())

	value, ok := buf.Peek()
	require.True(t, ok)
	assert.Equal(t, "first", value)
	assert.Equal(t, 3, buf.Size(), "Peek should not change size")

	value, ok = buf.Read()
	require.True(t, ok)
	assert.Equal(t, "first", value)
	assert.Equal(t, 2, buf.Size())

	batch := buf.ReadBatch(2)
	assert.Equal(t, []string{"second", "third"}, batch)
	assert.Equal(t, 0, buf.Size())
}

func TestCircularBufferOverflowPolicies(t *testing.T) {
	testCases := []struct {
		name     string
		policy   OverflowPolicy
		expected []int
		dropped  []int
	}{
		{
			name:     "DropOldest",
			policy:   DropOldest,
			expected: []int{3, 4, 5},
			dropped:  []int{1, 2},
		},
		{
			name:     "DropNewest",
			policy:   DropNewest,
			expected: []int{1, 2, 3},
			dropped:  []int{4, 5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var mu sync.Mutex
			var dropped []int

			buf := newTestBuffer[int](t, 3,
				WithOverflowPolicy[int](tc.policy),
				WithDropCallback(func(item int) {
					mu.Lock()
					dropped = append(dropped, item)
					mu.Unlock()
				}),
			)

			for i := 1; i <= 5; i++ {
				require.NoError(t, buf.Write(i))
			}

			assert.Equal(t, tc.expected, buf.Snapshot())
			assert.Equal(t, tc.expected, buf.ReadBatch(10))

			mu.Lock()
			assert.Equal(t, tc.dropped, dropped)
			mu.Unlock()

			assert.Equal(t, int64(2), buf.Stats().Overflows())
			assert.Equal(t, int64(2), buf.Stats().Drops())
		})
	}
}

func TestCircularBuffer_DropCallbackMayReenter(t *testing.T) {
	var buf Buffer[int]
	sizes := make(chan int, 4)

	buf = newTestBuffer[int](t, 1,
		WithOverflowPolicy[int](DropNewest),
		WithDropCallback(func(int) {
			// Would deadlock if the callback ran under the buffer lock
			sizes <- buf.Size()
		}),
	)

	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))
	assert.Equal(t, 1, <-sizes)
}

func TestCircularBuffer_TryWrite(t *testing.T) {
	for _, policy := range []OverflowPolicy{DropOldest, DropNewest, Block} {
		t.Run(policy.String(), func(t *testing.T) {
			buf := newTestBuffer[int](t, 2, WithOverflowPolicy[int](policy))

			ok, err := buf.TryWrite(1)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = buf.TryWrite(2)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = buf.TryWrite(3)
			require.NoError(t, err)
			assert.False(t, ok, "TryWrite never evicts nor blocks")

			assert.Equal(t, []int{1, 2}, buf.Snapshot())
			assert.Equal(t, int64(1), buf.Stats().Overflows())
			assert.Equal(t, int64(0), buf.Stats().Drops())
		})
	}
}

func TestCircularBuffer_ReadWithContext(t *testing.T) {
	buf := newTestBuffer[int](t, 4)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = buf.Write(7)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	v, err := buf.ReadWithContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCircularBuffer_ReadWithContextCancelled(t *testing.T) {
	buf := newTestBuffer[int](t, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := buf.ReadWithContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestCircularBuffer_ReadWithContextDrainsAfterClose(t *testing.T) {
	buf := newTestBuffer[int](t, 4)
	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))
	require.NoError(t, buf.Close())

	ctx := context.Background()
	for _, want := range []int{1, 2} {
		v, err := buf.ReadWithContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	_, err := buf.ReadWithContext(ctx)
	require.ErrorIs(t, err, cerrors.ErrAlreadyStopped)
}

func TestCircularBuffer_ReadWithContextWokenByClose(t *testing.T) {
	buf := newTestBuffer[int](t, 4)

	errCh := make(chan error, 1)
	go func() {
		_, err := buf.ReadWithContext(context.Background())
		errCh <- err
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, buf.Close())

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, cerrors.ErrAlreadyStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("reader was not woken by Close")
	}
}

func TestCircularBuffer_Grow(t *testing.T) {
	buf := newTestBuffer[int](t, 3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, buf.Write(i))
	}
	require.Equal(t, []int{3, 4, 5}, buf.Snapshot())

	require.NoError(t, buf.Grow(5))
	assert.Equal(t, 5, buf.Capacity())
	assert.False(t, buf.IsFull())

	require.NoError(t, buf.Write(6))
	require.NoError(t, buf.Write(7))
	assert.Equal(t, []int{3, 4, 5, 6, 7}, buf.Snapshot())

	err := buf.Grow(2)
	require.ErrorIs(t, err, cerrors.ErrInvalidCapacity)
	assert.True(t, cerrors.IsInvalid(err))
}

func TestCircularBuffer_GrowUnblocksWriter(t *testing.T) {
	buf := newTestBuffer[int](t, 1, WithOverflowPolicy[int](Block))
	require.NoError(t, buf.Write(1))

	errCh := make(chan error, 1)
	go func() { errCh <- buf.Write(2) }()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, buf.Grow(2))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("writer was not woken by Grow")
	}
	assert.Equal(t, []int{1, 2}, buf.Snapshot())
}

func TestCircularBufferWithStatistics(t *testing.T) {
	buf := newTestBuffer[int](t, 5)
	stats := buf.Stats()

	_ = buf.Write(1)
	_ = buf.Write(2)
	assert.Equal(t, int64(2), stats.Writes())

	buf.Read()
	buf.Peek()
	assert.Equal(t, int64(1), stats.Reads())
	assert.Equal(t, int64(1), stats.Peeks())
	assert.Equal(t, int64(1), stats.CurrentSize())
	assert.Equal(t, int64(2), stats.MaxSize())
	assert.InDelta(t, 0.2, stats.Utilization(5), 1e-9)

	summary := stats.Summary()
	assert.Equal(t, int64(2), summary.Writes)
	assert.Equal(t, int64(1), summary.Reads)

	stats.Reset()
	assert.Equal(t, int64(0), stats.Writes())
	assert.Equal(t, int64(0), stats.MaxSize())
}

func TestCircularBuffer_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	buf := newTestBuffer[int](t, 2,
		WithOverflowPolicy[int](DropNewest),
		WithMetrics[int](registry, "samples"),
	)

	_ = buf.Write(1)
	_ = buf.Write(2)
	_ = buf.Write(3)
	buf.ReadBatch(2)

	cb := buf.(*circularBuffer[int])
	assert.Equal(t, 2.0, testutil.ToFloat64(cb.metrics.writes))
	assert.Equal(t, 2.0, testutil.ToFloat64(cb.metrics.reads))
	assert.Equal(t, 1.0, testutil.ToFloat64(cb.metrics.drops))
	assert.Equal(t, 0.0, testutil.ToFloat64(cb.metrics.size))
	assert.Equal(t, 2.0, testutil.ToFloat64(cb.metrics.capacity))

	require.NoError(t, buf.Grow(4))
	assert.Equal(t, 4.0, testutil.ToFloat64(cb.metrics.capacity))

	// The component label can only be registered once
	_, err := NewCircularBuffer[int](2, WithMetrics[int](registry, "samples"))
	require.Error(t, err)
	assert.True(t, cerrors.IsTransient(err))
}

func TestCircularBufferThreadSafety(t *testing.T) {
	buf := newTestBuffer[int](t, 1000)

	var wg sync.WaitGroup
	numWorkers := 10
	itemsPerWorker := 100

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < itemsPerWorker; i++ {
				_ = buf.Write(worker*itemsPerWorker + i)
			}
		}(w)
	}

	var readMutex sync.Mutex
	readCount := 0
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < itemsPerWorker; i++ {
				if _, ok := buf.Read(); ok {
					readMutex.Lock()
					readCount++
					readMutex.Unlock()
				}
			}
		}()
	}

	wg.Wait()

	readMutex.Lock()
	defer readMutex.Unlock()
	assert.Equal(t, numWorkers*itemsPerWorker, readCount+buf.Size(), "Data integrity issue")
}

func TestCircularBufferClear(t *testing.T) {
	var dropped []string
	buf := newTestBuffer[string](t, 5, WithDropCallback(func(s string) { dropped = append(dropped, s) }))

	_ = buf.Write("a")
	_ = buf.Write("b")
	_ = buf.Write("c")
	require.Equal(t, 3, buf.Size())

	buf.Clear()

	assert.True(t, buf.IsEmpty())
	assert.Equal(t, []string{"a", "b", "c"}, dropped)
	assert.Equal(t, int64(0), buf.Stats().CurrentSize())

	// Storage is reusable after Clear
	_ = buf.Write("d")
	assert.Equal(t, []string{"d"}, buf.Snapshot())
}

func TestCircularBufferGenericTypes(t *testing.T) {
	type TestStruct struct {
		ID   int
		Name string
	}

	structBuf := newTestBuffer[TestStruct](t, 2)
	_ = structBuf.Write(TestStruct{ID: 1, Name: "first"})
	_ = structBuf.Write(TestStruct{ID: 2, Name: "second"})

	result, ok := structBuf.Read()
	require.True(t, ok)
	assert.Equal(t, TestStruct{ID: 1, Name: "first"}, result)
}

func TestCircularBufferEdgeCases(t *testing.T) {
	buf := newTestBuffer[int](t, 1)

	_ = buf.Write(1)
	assert.True(t, buf.IsFull())

	value, ok := buf.Read()
	require.True(t, ok)
	assert.Equal(t, 1, value)

	_, ok = buf.Read()
	assert.False(t, ok, "Reading from empty buffer should return false")

	_, ok = buf.Peek()
	assert.False(t, ok, "Peeking empty buffer should return false")

	assert.Empty(t, buf.ReadBatch(5))
	assert.Nil(t, buf.ReadBatch(0))
	assert.Empty(t, buf.Snapshot())
}

func TestBlockingPolicyWithTimeout(t *testing.T) {
	buf := newTestBuffer[int](t, 2, WithOverflowPolicy[int](Block))
	require.NoError(t, buf.Write(1))
	require.NoError(t, buf.Write(2))

	start := time.Now()
	err := buf.WriteWithTimeout(3, 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.Equal(t, context.DeadlineExceeded, err)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, []int{1, 2}, buf.Snapshot())
}

func TestBlockingPolicyWithContextCancellation(t *testing.T) {
	buf := newTestBuffer[int](t, 2, WithOverflowPolicy[int](Block))
	_ = buf.Write(1)
	_ = buf.Write(2)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := buf.WriteWithContext(ctx, 3)
	elapsed := time.Since(start)

	assert.Equal(t, context.Canceled, err)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestBlockingPolicyUnblocksOnRead(t *testing.T) {
	buf := newTestBuffer[int](t, 2, WithOverflowPolicy[int](Block))
	_ = buf.Write(1)
	_ = buf.Write(2)

	var wg sync.WaitGroup
	var writeErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		writeErr = buf.Write(3)
	}()

	time.Sleep(50 * time.Millisecond)

	value, ok := buf.Read()
	require.True(t, ok)
	assert.Equal(t, 1, value)

	wg.Wait()
	require.NoError(t, writeErr, "Write should have succeeded after read")
	assert.Equal(t, []int{2, 3}, buf.Snapshot())
}

func TestBlockingPolicyUnblockedByClose(t *testing.T) {
	buf := newTestBuffer[int](t, 1, WithOverflowPolicy[int](Block))
	_ = buf.Write(1)

	errCh := make(chan error, 1)
	go func() { errCh <- buf.Write(2) }()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, buf.Close())

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, cerrors.ErrAlreadyStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("writer was not woken by Close")
	}
}

func TestErrorFrameworkIntegration(t *testing.T) {
	buf := newTestBuffer[int](t, 2)
	_ = buf.Close()

	err := buf.Write(1)
	require.Error(t, err)

	var classifiedErr *cerrors.ClassifiedError
	require.True(t, errors.As(err, &classifiedErr), "Expected error to be classified")
	assert.Equal(t, cerrors.ErrorInvalid, classifiedErr.Class)
	assert.Equal(t, "Buffer", classifiedErr.Component)
	assert.Equal(t, "Write", classifiedErr.Operation)
	assert.ErrorIs(t, err, cerrors.ErrAlreadyStopped)

	_, err = buf.TryWrite(1)
	assert.ErrorIs(t, err, cerrors.ErrAlreadyStopped)
	assert.ErrorIs(t, buf.Grow(10), cerrors.ErrAlreadyStopped)
	assert.ErrorIs(t, buf.WriteWithContext(context.Background(), 1), cerrors.ErrAlreadyStopped)

	assert.NoError(t, buf.Close(), "Close is idempotent")
}

func TestConcurrentContextCancellations(t *testing.T) {
	buf := newTestBuffer[int](t, 1, WithOverflowPolicy[int](Block))
	_ = buf.Write(1)

	var wg sync.WaitGroup
	errs := make([]error, 10)

	for i := range errs {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			errs[id] = buf.WriteWithContext(ctx, id)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.Equal(t, context.DeadlineExceeded, err, "goroutine %d", i)
	}
}

func TestBlockingPolicyNoGoroutineLeaks(t *testing.T) {
	initialGoroutines := runtime.NumGoroutine()

	buf := newTestBuffer[int](t, 1, WithOverflowPolicy[int](Block))
	_ = buf.Write(1)

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_ = buf.WriteWithContext(ctx, i)
		cancel()
	}

	// Successful writes release their context hooks too
	buf.Read()
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		require.NoError(t, buf.WriteWithContext(ctx, i))
		buf.Read()
		cancel()
	}

	time.Sleep(100 * time.Millisecond)

	finalGoroutines := runtime.NumGoroutine()
	assert.LessOrEqual(t, finalGoroutines, initialGoroutines+2, "Potential goroutine leak")
}

func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range []OverflowPolicy{DropOldest, DropNewest, Block} {
		got, ok := ParseOverflowPolicy(p.String())
		require.True(t, ok)
		assert.Equal(t, p, got)
	}

	got, ok := ParseOverflowPolicy("drop_newest")
	require.True(t, ok)
	assert.Equal(t, DropNewest, got)

	_, ok = ParseOverflowPolicy("sometimes")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", OverflowPolicy(42).String())
}

func TestStatsContext(t *testing.T) {
	stats := NewStatistics()
	ctx := WithStats(context.Background(), stats)

	got, ok := StatsFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, stats, got)

	_, ok = StatsFromContext(context.Background())
	assert.False(t, ok)
}
