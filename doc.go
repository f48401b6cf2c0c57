// Package cyclicbuffer is a fixed-capacity circular buffer library and the pieces built
// around it.
//
// # Layout
//
//   - pkg/ringbuffer: the generic RingBuffer[T]. Fixed capacity, O(1) insertion and
//     removal at both ends, optional overwrite of the oldest element when full, resizing,
//     rotation, reversal, two-segment views and linearized copies. Not safe for concurrent
//     use.
//   - pkg/buffer: a mutex-guarded Buffer[T] over a RingBuffer with overflow policies
//     (DropOldest, DropNewest, Block), context-aware blocking reads and writes, statistics
//     and optional Prometheus metrics.
//   - pkg/worker: a worker pool whose queue is a pkg/buffer circular buffer.
//   - pkg/retry: exponential backoff for transient failures such as a full queue.
//   - errors: sentinel errors and the transient/invalid/fatal classification shared by
//     every package.
//   - metric: the Prometheus registry wrapper and metrics HTTP server.
//   - config: YAML configuration for the demo pipeline.
//   - cmd/cyclicbuf: a sliding-window demo tying the packages together.
//
// # Quick Start
//
//	ring, err := ringbuffer.New[int](3, ringbuffer.WithOverwrite(true))
//	if err != nil {
//		return err
//	}
//	for i := 1; i <= 5; i++ {
//		_ = ring.Insert(i)
//	}
//	fmt.Println(ring.Linearize()) // [3 4 5]
//
// Errors returned by every package can be inspected with errors.Is against the sentinels
// in package errors, and classified with errors.IsTransient, errors.IsInvalid and
// errors.IsFatal.
package cyclicbuffer
