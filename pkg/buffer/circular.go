package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/c360/cyclicbuffer/errors"
	"github.com/c360/cyclicbuffer/pkg/ringbuffer"
)

// circularBuffer is a thread-safe queue over a ringbuffer.RingBuffer. The ring's overwrite
// flag mirrors the overflow policy: on for DropOldest, off otherwise.
type circularBuffer[T any] struct {
	mu      sync.RWMutex
	ring    *ringbuffer.RingBuffer[T]
	stats   *Statistics    // ALWAYS initialized for observability
	metrics *bufferMetrics // Optional Prometheus metrics
	opts    *bufferOptions[T]

	notEmpty *sync.Cond
	notFull  *sync.Cond
	closed   bool
}

// newCircularBuffer creates a new circular buffer instance.
// Returns an error if metrics registration fails when requested.
func newCircularBuffer[T any](capacity int, opts *bufferOptions[T]) (Buffer[T], error) {
	if capacity <= 0 {
		capacity = 1 // Minimum capacity
	}

	ring, err := ringbuffer.New[T](capacity, ringbuffer.WithOverwrite(opts.overflowPolicy == DropOldest))
	if err != nil {
		return nil, errors.Wrap(err, "Buffer", "newCircularBuffer", "allocate ring")
	}

	var metrics *bufferMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Buffer", "newCircularBuffer", "metrics registration")
		}
		metrics.setCapacity(capacity)
	}

	cb := &circularBuffer[T]{
		ring:    ring,
		stats:   NewStatistics(), // ALWAYS present
		metrics: metrics,         // Optional
		opts:    opts,
	}
	cb.notEmpty = sync.NewCond(&cb.mu)
	cb.notFull = sync.NewCond(&cb.mu)

	return cb, nil
}

// Write adds an item to the buffer according to the overflow policy.
func (cb *circularBuffer[T]) Write(item T) error {
	return cb.write(nil, item, "Write")
}

// WriteWithTimeout attempts to write an item with a timeout when using Block policy.
func (cb *circularBuffer[T]) WriteWithTimeout(item T, timeout time.Duration) error {
	if cb.opts.overflowPolicy != Block {
		return cb.Write(item)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return cb.WriteWithContext(ctx, item)
}

// WriteWithContext attempts to write an item with context cancellation when using Block policy.
// A cancelled context is reported as ctx.Err() unwrapped.
func (cb *circularBuffer[T]) WriteWithContext(ctx context.Context, item T) error {
	if cb.opts.overflowPolicy != Block {
		return cb.Write(item)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return cb.write(ctx, item, "WriteWithContext")
}

// write runs the overflow policy under the lock and invokes the drop callback after it is
// released. A nil ctx waits without a deadline.
func (cb *circularBuffer[T]) write(ctx context.Context, item T, op string) error {
	cb.mu.Lock()
	dropped, hasDropped, err := cb.writeLocked(ctx, item, op)
	cb.mu.Unlock()

	if hasDropped && cb.opts.dropCallback != nil {
		cb.opts.dropCallback(dropped)
	}
	return err
}

func (cb *circularBuffer[T]) writeLocked(ctx context.Context, item T, op string) (T, bool, error) {
	var zero T

	if cb.closed {
		return zero, false, errors.WrapInvalid(errors.ErrAlreadyStopped, "Buffer", op, "buffer closed")
	}

	if cb.ring.IsFull() {
		switch cb.opts.overflowPolicy {
		case DropOldest:
			// The ring evicts the oldest item on insert.
			oldest, _ := cb.ring.First()
			cb.recordOverflow(true)
			if err := cb.ring.Insert(item); err != nil {
				return zero, false, errors.Wrap(err, "Buffer", op, "overwrite oldest")
			}
			cb.recordWrite()
			return oldest, true, nil

		case DropNewest:
			cb.recordOverflow(true)
			return item, true, nil

		case Block:
			if err := cb.waitNotFull(ctx); err != nil {
				if ctx != nil && ctx.Err() != nil {
					return zero, false, err
				}
				return zero, false, errors.WrapInvalid(err, "Buffer", op, "buffer closed during blocking wait")
			}
		}
	}

	if err := cb.ring.Insert(item); err != nil {
		return zero, false, errors.Wrap(err, "Buffer", op, "insert item")
	}
	cb.recordWrite()
	return zero, false, nil
}

// waitNotFull blocks until the ring has room, the buffer closes, or ctx ends.
// The caller holds cb.mu.
func (cb *circularBuffer[T]) waitNotFull(ctx context.Context) error {
	if ctx != nil {
		stop := context.AfterFunc(ctx, func() {
			cb.mu.Lock()
			cb.notFull.Broadcast()
			cb.mu.Unlock()
		})
		defer stop()
	}

	for cb.ring.IsFull() && !cb.closed {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		cb.notFull.Wait()
	}
	if ctx != nil && ctx.Err() != nil && cb.ring.IsFull() {
		return ctx.Err()
	}
	if cb.closed {
		return errors.ErrAlreadyStopped
	}
	return nil
}

// TryWrite inserts item only when there is free space.
func (cb *circularBuffer[T]) TryWrite(item T) (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.closed {
		return false, errors.WrapInvalid(errors.ErrAlreadyStopped, "Buffer", "TryWrite", "buffer closed")
	}
	if cb.ring.IsFull() {
		cb.recordOverflow(false)
		return false, nil
	}

	if err := cb.ring.Insert(item); err != nil {
		return false, errors.Wrap(err, "Buffer", "TryWrite", "insert item")
	}
	cb.recordWrite()
	return true, nil
}

// Read retrieves and removes one item from the buffer.
func (cb *circularBuffer[T]) Read() (T, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	item, err := cb.ring.Get()
	if err != nil {
		// Don't record a miss for empty reads
		return item, false
	}
	cb.recordRead(1)
	return item, true
}

// ReadWithContext blocks until an item is available, the buffer is closed and drained, or
// ctx ends. A cancelled context is reported as ctx.Err() unwrapped.
func (cb *circularBuffer[T]) ReadWithContext(ctx context.Context) (T, error) {
	var zero T

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.ring.IsEmpty() && !cb.closed {
		stop := context.AfterFunc(ctx, func() {
			cb.mu.Lock()
			cb.notEmpty.Broadcast()
			cb.mu.Unlock()
		})
		defer stop()
	}

	for cb.ring.IsEmpty() && !cb.closed {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		cb.notEmpty.Wait()
	}

	item, err := cb.ring.Get()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, errors.WrapInvalid(errors.ErrAlreadyStopped, "Buffer", "ReadWithContext",
			"buffer closed and drained")
	}
	cb.recordRead(1)
	return item, nil
}

// ReadBatch retrieves and removes up to max items from the buffer.
func (cb *circularBuffer[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.ring.IsEmpty() {
		return nil
	}

	result := make([]T, min(max, cb.ring.Size()))
	n, err := cb.ring.GetInto(result, 0, len(result))
	if err != nil {
		return nil
	}
	cb.recordRead(n)
	return result[:n]
}

// Peek retrieves one item without removing it from the buffer.
func (cb *circularBuffer[T]) Peek() (T, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	item, err := cb.ring.First()
	if err != nil {
		return item, false
	}

	cb.stats.Peek()
	if cb.metrics != nil {
		cb.metrics.recordPeek()
	}
	return item, true
}

// Snapshot returns the buffered items, oldest first.
func (cb *circularBuffer[T]) Snapshot() []T {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.ring.Linearize()
}

// Grow raises the capacity and wakes writers blocked on a full buffer.
func (cb *circularBuffer[T]) Grow(n int) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.closed {
		return errors.WrapInvalid(errors.ErrAlreadyStopped, "Buffer", "Grow", "buffer closed")
	}
	if err := cb.ring.SetCapacity(n); err != nil {
		return errors.Wrap(err, "Buffer", "Grow", "grow capacity")
	}

	if cb.metrics != nil {
		cb.metrics.setCapacity(n)
		cb.metrics.updateSize(cb.ring.Size(), n)
	}
	cb.notFull.Broadcast()
	return nil
}

// Size returns the current number of items in the buffer.
func (cb *circularBuffer[T]) Size() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.ring.Size()
}

// Capacity returns the maximum number of items the buffer can hold.
func (cb *circularBuffer[T]) Capacity() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.ring.Capacity()
}

// IsFull returns true if the buffer is at maximum capacity.
func (cb *circularBuffer[T]) IsFull() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.ring.IsFull()
}

// IsEmpty returns true if the buffer contains no items.
func (cb *circularBuffer[T]) IsEmpty() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.ring.IsEmpty()
}

// Clear removes all items from the buffer. Every removed item is passed to the drop
// callback, if one is set, after the lock is released.
func (cb *circularBuffer[T]) Clear() {
	cb.mu.Lock()

	var dropped []T
	if cb.opts.dropCallback != nil {
		dropped = cb.ring.Linearize()
	}

	cb.ring.Reset()

	cb.stats.UpdateSize(0)
	if cb.metrics != nil {
		cb.metrics.updateSize(0, cb.ring.Capacity())
	}
	cb.notFull.Broadcast()
	cb.mu.Unlock()

	for _, item := range dropped {
		cb.opts.dropCallback(item)
	}
}

// Stats returns buffer statistics (always available for observability).
func (cb *circularBuffer[T]) Stats() *Statistics {
	return cb.stats
}

// Close shuts down the buffer. Buffered items stay readable.
func (cb *circularBuffer[T]) Close() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.closed {
		return nil
	}
	cb.closed = true

	cb.notEmpty.Broadcast()
	cb.notFull.Broadcast()
	return nil
}

// recordWrite tracks an accepted item and wakes a reader. The caller holds cb.mu.
func (cb *circularBuffer[T]) recordWrite() {
	size := cb.ring.Size()
	cb.stats.Write()
	cb.stats.UpdateSize(int64(size))
	if cb.metrics != nil {
		cb.metrics.recordWrite(size, cb.ring.Capacity())
	}
	cb.notEmpty.Signal()
}

// recordRead tracks n removed items and wakes writers. The caller holds cb.mu.
func (cb *circularBuffer[T]) recordRead(n int) {
	size := cb.ring.Size()
	for i := 0; i < n; i++ {
		cb.stats.Read()
	}
	cb.stats.UpdateSize(int64(size))
	if cb.metrics != nil {
		cb.metrics.recordReads(n, size, cb.ring.Capacity())
	}
	if n == 1 {
		cb.notFull.Signal()
	} else {
		cb.notFull.Broadcast()
	}
}

// recordOverflow tracks a write that found the buffer full, and a drop when an item was lost.
func (cb *circularBuffer[T]) recordOverflow(dropped bool) {
	cb.stats.Overflow()
	if dropped {
		cb.stats.Drop()
	}
	if cb.metrics != nil {
		cb.metrics.recordOverflow()
		if dropped {
			cb.metrics.recordDrop()
		}
	}
}
