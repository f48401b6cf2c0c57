package ringbuffer

import (
	"github.com/c360/cyclicbuffer/errors"
)

// PopFront discards the oldest element.
func (b *RingBuffer[T]) PopFront() error {
	if b.size == 0 {
		return errors.WrapTransient(errors.ErrEmptyBuffer, component, "PopFront", "pop front")
	}
	b.dropFront()
	return nil
}

// PopBack discards the newest element. Head does not move.
func (b *RingBuffer[T]) PopBack() error {
	if b.size == 0 {
		return errors.WrapTransient(errors.ErrEmptyBuffer, component, "PopBack", "pop back")
	}
	b.dropBack()
	return nil
}

func (b *RingBuffer[T]) dropFront() {
	var zero T
	b.items[b.head] = zero
	b.head++
	if b.head == len(b.items) {
		b.head = 0
	}
	b.size--
}

func (b *RingBuffer[T]) dropBack() {
	var zero T
	b.items[b.physical(b.size-1)] = zero
	b.size--
}

// Get removes and returns the oldest element.
func (b *RingBuffer[T]) Get() (T, error) {
	if b.size == 0 {
		var zero T
		return zero, errors.WrapTransient(errors.ErrEmptyBuffer, component, "Get", "get front")
	}
	v := b.items[b.head]
	b.dropFront()
	return v, nil
}

// GetInto removes up to count elements from the front and stores them in dst starting at
// dst[start]. The number moved is bounded by Size() and by the room left in dst.
func (b *RingBuffer[T]) GetInto(dst []T, start, count int) (int, error) {
	if err := checkTarget(dst, start, count, "GetInto"); err != nil {
		return 0, err
	}
	if b.size == 0 {
		return 0, errors.WrapTransient(errors.ErrEmptyBuffer, component, "GetInto", "drain front")
	}

	n := min(count, b.size, len(dst)-start)
	b.copyOut(dst[start:], n)
	for i := 0; i < n; i++ {
		b.dropFront()
	}
	return n, nil
}

// CopyTo copies the first min(count, Size()) elements into dst starting at dst[start]
// without removing them. It fails with ErrInsufficientSpace when they do not fit.
func (b *RingBuffer[T]) CopyTo(dst []T, start, count int) (int, error) {
	if err := checkTarget(dst, start, count, "CopyTo"); err != nil {
		return 0, err
	}

	n := min(count, b.size)
	if n > len(dst)-start {
		return 0, errors.WrapInvalid(errors.ErrInsufficientSpace, component, "CopyTo", "copy elements")
	}
	b.copyOut(dst[start:], n)
	return n, nil
}

func checkTarget[T any](dst []T, start, count int, method string) error {
	if dst == nil {
		return errors.WrapInvalid(errors.ErrNullTarget, component, method, "check destination")
	}
	if start < 0 || start >= len(dst) {
		return errors.WrapInvalid(errors.ErrIndexOutOfRange, component, method, "check destination index")
	}
	if count < 0 {
		return errors.WrapInvalid(errors.ErrNegativeSize, component, method, "check count")
	}
	return nil
}

// RemoveFunc removes the first element for which match returns true. Elements after it
// shift one slot toward the front. It reports whether an element was removed.
func (b *RingBuffer[T]) RemoveFunc(match func(T) bool) bool {
	k := b.indexFunc(match)
	if k < 0 {
		return false
	}
	if k == 0 {
		b.dropFront()
		return true
	}

	for i := k; i < b.size-1; i++ {
		b.items[b.physical(i)] = b.items[b.physical(i+1)]
	}
	b.dropBack()
	return true
}

// Remove removes the first element equal to v and reports whether one was found.
func Remove[T comparable](b *RingBuffer[T], v T) bool {
	return b.RemoveFunc(func(item T) bool { return item == v })
}

// Clear empties the buffer in constant time. Storage is not zeroed; stale values stay
// unreachable until overwritten.
func (b *RingBuffer[T]) Clear() {
	b.size = 0
	b.head = 0
}

// Reset empties the buffer like Clear and also zeroes the storage, so removed elements
// can be collected. It costs O(capacity).
func (b *RingBuffer[T]) Reset() {
	clear(b.items)
	b.size = 0
	b.head = 0
}

func (b *RingBuffer[T]) indexFunc(match func(T) bool) int {
	for i := 0; i < b.size; i++ {
		if match(b.items[b.physical(i)]) {
			return i
		}
	}
	return -1
}
