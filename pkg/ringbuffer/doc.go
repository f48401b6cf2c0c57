// Package ringbuffer provides a fixed-capacity generic circular buffer with double-ended
// removal, bulk copy and drain, in-place reversal and rotation, explicit capacity growth,
// and an optional overwrite policy.
//
// # Index Model
//
// A RingBuffer owns one storage block of Capacity() slots and tracks two integers: head,
// the physical slot of the oldest element, and size, the number of valid elements. Logical
// position i maps to physical slot (head+i) mod capacity. The tail, the slot the next
// Insert writes to, is always derived as (head+size) mod capacity; it equals head when the
// buffer is full.
//
//	capacity 5, head 3, size 4, tail 2
//
//	physical slot:   0    1    2    3    4
//	logical pos:    [2]  [3]  [ ]  [0]  [1]
//	                           ^    ^
//	                         tail  head
//
// # Overwrite Policy
//
// With overwrite allowed (the default) inserting into a full buffer evicts the oldest
// element, which makes the buffer a sliding window over the last Capacity() inserts:
//
//	rb, _ := ringbuffer.New[int](3)
//	rb.InsertAll(1, 2, 3, 4, 5)
//	rb.Linearize() // [3 4 5]
//
// With overwrite disallowed, Insert on a full buffer returns an error matching
// errors.ErrBufferFull and InsertSlice stops at the free capacity and reports a short count:
//
//	rb, _ := ringbuffer.New[int](2, ringbuffer.WithOverwrite(false))
//	n, _ := rb.InsertAll(1, 2, 3) // n == 2
//
// # Views
//
// Linearize returns a new slice in logical order. ArraySegmentOne and ArraySegmentTwo
// return the valid region as the two contiguous runs of storage it occupies; the second is
// nil when IsLinearized() is true. All, Values and Backward return range-over-func
// iterators, and Iter returns an explicit cursor. Iterators are live views: mutating the
// buffer while ranging over it is not allowed.
//
// # Errors
//
// Every failure is detected before any state changes and is returned wrapped in an
// *errors.ClassifiedError from github.com/c360/cyclicbuffer/errors, so callers test for
// the sentinel with errors.Is:
//
//	if _, err := rb.First(); errors.Is(err, cerrors.ErrEmptyBuffer) { ... }
//
// # Concurrency
//
// RingBuffer performs no locking. Use pkg/buffer for a goroutine-safe queue built on top
// of it.
package ringbuffer
