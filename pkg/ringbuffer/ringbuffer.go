package ringbuffer

import (
	"github.com/c360/cyclicbuffer/errors"
)

const component = "RingBuffer"

// RingBuffer is a fixed-capacity circular buffer. Logical element i lives at physical slot
// (head+i) mod capacity. The tail is derived from head and size and never stored.
//
// RingBuffer is not safe for concurrent use. Wrap it with pkg/buffer, or guard every call
// with a single mutex.
type RingBuffer[T any] struct {
	items     []T
	head      int
	size      int
	overwrite bool
}

// Option configures a RingBuffer at construction time.
type Option func(*options)

type options struct {
	overwrite bool
}

// WithOverwrite sets whether inserting into a full buffer evicts the oldest element.
// Defaults to true.
func WithOverwrite(allowed bool) Option {
	return func(o *options) {
		o.overwrite = allowed
	}
}

func applyOptions(opts ...Option) options {
	o := options{
		overwrite: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// New creates an empty buffer with the given capacity.
func New[T any](capacity int, opts ...Option) (*RingBuffer[T], error) {
	if capacity < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, component, "New", "allocate storage")
	}
	o := applyOptions(opts...)
	return &RingBuffer[T]{
		items:     make([]T, capacity),
		overwrite: o.overwrite,
	}, nil
}

// NewFilled creates a full buffer of the given size where every slot holds value.
func NewFilled[T any](size int, value T, opts ...Option) (*RingBuffer[T], error) {
	if size < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, component, "NewFilled", "allocate storage")
	}
	return NewFilledWithCapacity(size, size, value, opts...)
}

// NewFilledWithCapacity creates a buffer of the given capacity holding size copies of value.
func NewFilledWithCapacity[T any](capacity, size int, value T, opts ...Option) (*RingBuffer[T], error) {
	if capacity < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, component, "NewFilledWithCapacity",
			"allocate storage")
	}
	if size < 0 {
		return nil, errors.WrapInvalid(errors.ErrNegativeSize, component, "NewFilledWithCapacity", "fill")
	}
	if size > capacity {
		return nil, errors.WrapInvalid(errors.ErrInvalidSize, component, "NewFilledWithCapacity", "fill")
	}

	o := applyOptions(opts...)
	b := &RingBuffer[T]{
		items:     make([]T, capacity),
		size:      size,
		overwrite: o.overwrite,
	}
	for i := 0; i < size; i++ {
		b.items[i] = value
	}
	return b, nil
}

// NewFrom copies other, preserving its capacity, head and size. Only the logically valid
// slots are copied. The overwrite policy comes from opts, not from other. A nil other
// yields an empty buffer of capacity 0.
func NewFrom[T any](other *RingBuffer[T], opts ...Option) *RingBuffer[T] {
	o := applyOptions(opts...)
	if other == nil {
		return &RingBuffer[T]{items: make([]T, 0), overwrite: o.overwrite}
	}
	b := &RingBuffer[T]{
		items:     make([]T, len(other.items)),
		head:      other.head,
		size:      other.size,
		overwrite: o.overwrite,
	}
	for i := 0; i < other.size; i++ {
		p := other.physical(i)
		b.items[p] = other.items[p]
	}
	return b
}

// physical maps logical position i to its storage slot. Callers guarantee capacity > 0.
func (b *RingBuffer[T]) physical(i int) int {
	p := b.head + i
	if p >= len(b.items) {
		p -= len(b.items)
	}
	return p
}

// advance moves a physical index n slots forward (or backward for negative n) with wraparound.
func (b *RingBuffer[T]) advance(p, n int) int {
	c := len(b.items)
	p = (p + n) % c
	if p < 0 {
		p += c
	}
	return p
}

// Capacity returns the number of slots in the backing storage.
func (b *RingBuffer[T]) Capacity() int { return len(b.items) }

// SetCapacity grows the buffer to n slots. The logical elements are copied to the start of
// the new block, so the buffer is linearized afterwards with head at 0. Shrinking is
// rejected; requesting the current capacity is a no-op.
func (b *RingBuffer[T]) SetCapacity(n int) error {
	if n == len(b.items) {
		return nil
	}
	if n < len(b.items) {
		return errors.WrapInvalid(errors.ErrInvalidCapacity, component, "SetCapacity", "shrink storage")
	}

	grown := make([]T, n)
	b.copyOut(grown, b.size)
	b.items = grown
	b.head = 0
	return nil
}

// Size returns the number of logically valid elements.
func (b *RingBuffer[T]) Size() int { return b.size }

// Len is an alias of Size.
func (b *RingBuffer[T]) Len() int { return b.size }

// Reserve returns the number of free slots.
func (b *RingBuffer[T]) Reserve() int { return len(b.items) - b.size }

// Head returns the physical index of the first logical element.
func (b *RingBuffer[T]) Head() int { return b.head }

// Tail returns the physical index where the next appended element is written. It equals
// Head when the buffer is full.
func (b *RingBuffer[T]) Tail() int {
	if len(b.items) == 0 {
		return 0
	}
	return (b.head + b.size) % len(b.items)
}

// OverwriteAllowed reports whether inserting into a full buffer evicts the oldest element.
func (b *RingBuffer[T]) OverwriteAllowed() bool { return b.overwrite }

// SetOverwriteAllowed changes the overwrite policy.
func (b *RingBuffer[T]) SetOverwriteAllowed(allowed bool) { b.overwrite = allowed }

// IsEmpty reports whether the buffer holds no elements.
func (b *RingBuffer[T]) IsEmpty() bool { return b.size == 0 }

// IsFull reports whether every slot holds a valid element.
func (b *RingBuffer[T]) IsFull() bool { return b.size == len(b.items) }

// IsLinearized reports whether the valid region occupies a single contiguous block of
// storage, i.e. it does not wrap past the last slot.
func (b *RingBuffer[T]) IsLinearized() bool { return b.head+b.size <= len(b.items) }

// ElementAt returns the element at logical position i.
func (b *RingBuffer[T]) ElementAt(i int) (T, error) {
	if i < 0 || i >= b.size {
		var zero T
		return zero, errors.WrapInvalid(errors.ErrIndexOutOfRange, component, "ElementAt", "read element")
	}
	return b.items[b.physical(i)], nil
}

// First returns the oldest element.
func (b *RingBuffer[T]) First() (T, error) {
	if b.size == 0 {
		var zero T
		return zero, errors.WrapTransient(errors.ErrEmptyBuffer, component, "First", "read first element")
	}
	return b.items[b.head], nil
}

// Last returns the newest element.
func (b *RingBuffer[T]) Last() (T, error) {
	if b.size == 0 {
		var zero T
		return zero, errors.WrapTransient(errors.ErrEmptyBuffer, component, "Last", "read last element")
	}
	return b.items[b.physical(b.size-1)], nil
}

// copyOut copies the first n logical elements into dst using at most two copy calls.
func (b *RingBuffer[T]) copyOut(dst []T, n int) {
	if n == 0 {
		return
	}
	end := b.head + n
	if end <= len(b.items) {
		copy(dst, b.items[b.head:end])
		return
	}
	k := copy(dst, b.items[b.head:])
	copy(dst[k:], b.items[:n-k])
}
