package ringbuffer

import (
	"fmt"
	"strings"
)

// ContainsFunc reports whether any element satisfies match.
func (b *RingBuffer[T]) ContainsFunc(match func(T) bool) bool {
	return b.indexFunc(match) >= 0
}

// IndexFunc returns the logical position of the first element satisfying match, or -1.
func (b *RingBuffer[T]) IndexFunc(match func(T) bool) int {
	return b.indexFunc(match)
}

// Contains reports whether v is present. Equality is Go's ==, so a nil pointer or nil
// interface only matches a stored nil.
func Contains[T comparable](b *RingBuffer[T], v T) bool {
	return b.indexFunc(func(item T) bool { return item == v }) >= 0
}

// Index returns the logical position of the first element equal to v, or -1.
func Index[T comparable](b *RingBuffer[T], v T) int {
	return b.indexFunc(func(item T) bool { return item == v })
}

// EqualFunc reports whether a and b hold the same number of elements and eq holds for each
// pair in logical order. Capacity, head and overwrite policy are ignored.
func EqualFunc[T any](a, b *RingBuffer[T], eq func(T, T) bool) bool {
	if a.size != b.size {
		return false
	}
	for i := 0; i < a.size; i++ {
		if !eq(a.items[a.physical(i)], b.items[b.physical(i)]) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b hold equal elements in the same logical order.
func Equal[T comparable](a, b *RingBuffer[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// Clone returns an independent copy that keeps capacity, layout and overwrite policy.
func (b *RingBuffer[T]) Clone() *RingBuffer[T] {
	return NewFrom(b, WithOverwrite(b.overwrite))
}

// String formats the logical contents, e.g. "[1 2 3]".
func (b *RingBuffer[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < b.size; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, b.items[b.physical(i)])
	}
	sb.WriteByte(']')
	return sb.String()
}
