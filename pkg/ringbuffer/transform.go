package ringbuffer

import (
	"github.com/c360/cyclicbuffer/errors"
)

// Reverse reverses the logical order of the elements in place.
func (b *RingBuffer[T]) Reverse() {
	for i, j := 0, b.size-1; i < j; i, j = i+1, j-1 {
		pi, pj := b.physical(i), b.physical(j)
		b.items[pi], b.items[pj] = b.items[pj], b.items[pi]
	}
}

// Rotate rotates the logical range [first, last) in place so that the element at logical
// position middle becomes the element at first. Positions are logical and resolved through
// the head offset, so the result does not depend on whether the buffer is wrapped.
func (b *RingBuffer[T]) Rotate(first, middle, last int) error {
	if first < 0 || first > middle || middle > last || last > b.size {
		return errors.WrapInvalid(errors.ErrIndexOutOfRange, component, "Rotate", "check rotation bounds")
	}
	if first == middle || middle == last {
		return nil
	}

	next := middle
	for first != next {
		pf, pn := b.physical(first), b.physical(next)
		b.items[pf], b.items[pn] = b.items[pn], b.items[pf]
		first++
		next++
		if next == last {
			next = middle
		} else if first == middle {
			middle = next
		}
	}
	return nil
}

// Skip bypasses the oldest n elements of a full buffer by moving head, without copying.
// Negative n moves head backward. It has no effect unless the buffer is full.
func (b *RingBuffer[T]) Skip(n int) {
	if len(b.items) == 0 || !b.IsFull() {
		return
	}
	b.head = b.advance(b.head, n)
}

// ArraySegmentOne returns a copy of the first contiguous storage run of the valid region:
// the whole region when it is linearized, otherwise the slots from head to the end of storage.
func (b *RingBuffer[T]) ArraySegmentOne() ([]T, error) {
	if b.size == 0 {
		return nil, errors.WrapTransient(errors.ErrEmptyBuffer, component, "ArraySegmentOne", "read segment")
	}
	end := min(b.head+b.size, len(b.items))
	out := make([]T, end-b.head)
	copy(out, b.items[b.head:end])
	return out, nil
}

// ArraySegmentTwo returns a copy of the wrapped part of the valid region, from slot 0 up to
// the tail. It returns nil when the buffer is linearized.
func (b *RingBuffer[T]) ArraySegmentTwo() ([]T, error) {
	if b.size == 0 {
		return nil, errors.WrapTransient(errors.ErrEmptyBuffer, component, "ArraySegmentTwo", "read segment")
	}
	if b.IsLinearized() {
		return nil, nil
	}
	out := make([]T, b.Tail())
	copy(out, b.items[:b.Tail()])
	return out, nil
}

// Linearize returns a new slice holding every element in logical order. The buffer is not
// modified.
func (b *RingBuffer[T]) Linearize() []T {
	out := make([]T, b.size)
	b.copyOut(out, b.size)
	return out
}
