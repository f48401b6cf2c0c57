// Package buffer provides thread-safe circular buffers with configurable overflow policies,
// built-in statistics tracking, and optional Prometheus metrics integration.
//
// # Overview
//
// A buffer is a mutex-guarded pkg/ringbuffer.RingBuffer plus two condition variables, one
// for readers waiting on an empty buffer and one for writers blocked by the Block policy.
// The overflow policy maps onto the ring's overwrite flag: DropOldest turns overwrite on
// and lets the ring evict, DropNewest and Block turn it off.
//
// # Quick Start
//
//	buf, err := buffer.NewCircularBuffer[int](1000)
//	if err != nil {
//		return err
//	}
//
//	err = buf.Write(42)
//	value, ok := buf.Read()
//
// With overflow policy and metrics:
//
//	buf, err := buffer.NewCircularBuffer[float64](5000,
//		buffer.WithOverflowPolicy[float64](buffer.DropOldest),
//		buffer.WithMetrics[float64](registry, "samples"),
//	)
//
// # Overflow Policies
//
//   - DropOldest: Remove oldest item to make room (default)
//   - DropNewest: Reject new items when full
//   - Block: Write operations wait for available space
//
// TryWrite ignores the policy: it never evicts and never waits, and reports whether the
// item was taken. It is what pkg/worker uses to reject work from a full queue.
//
// Blocking writes honour a context:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	err := buf.WriteWithContext(ctx, sample)
//
// A cancelled or expired context is returned as ctx.Err() itself, so callers compare it
// with context.Canceled or context.DeadlineExceeded directly.
//
// # Reading
//
// Read and ReadBatch never wait. ReadWithContext waits for an item; after Close it keeps
// returning buffered items until the buffer is drained and then fails with an error
// matching errors.ErrAlreadyStopped. Snapshot copies the contents without removing them.
//
// # Growing
//
// Grow raises capacity in place through RingBuffer.SetCapacity and wakes blocked writers.
// Capacity never shrinks.
//
// # Observability
//
// Statistics are always collected with atomic counters and are available through Stats().
// WithMetrics additionally exports Prometheus counters (writes, reads, peeks, overflows,
// drops) and gauges (size, capacity, utilization) labelled with the component name.
//
// # Drop Callbacks
//
// WithDropCallback receives every item lost to DropOldest or DropNewest and every item
// removed by Clear. Callbacks run after the buffer lock is released.
//
// # Thread Safety
//
// All buffer operations are safe for concurrent use by multiple producers and consumers.
package buffer
