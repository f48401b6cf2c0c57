package ringbuffer

import "iter"

// Iterator walks the logical elements of a buffer front to back. It captures head and size
// when created; any structural change to the buffer while iterating (insert, remove, resize,
// rotate, capacity growth) invalidates it and yields undefined values. Take a Linearize()
// copy first when a stable view is needed.
type Iterator[T any] struct {
	b    *RingBuffer[T]
	head int
	size int
	pos  int
}

// Iter returns a cursor positioned before the first element.
func (b *RingBuffer[T]) Iter() *Iterator[T] {
	return &Iterator[T]{b: b, head: b.head, size: b.size, pos: -1}
}

// Next advances the cursor and reports whether an element is available.
func (it *Iterator[T]) Next() bool {
	if it.pos+1 >= it.size {
		it.pos = it.size
		return false
	}
	it.pos++
	return true
}

// Value returns the element under the cursor. It must only be called after Next returned true.
func (it *Iterator[T]) Value() T {
	p := (it.head + it.pos) % len(it.b.items)
	return it.b.items[p]
}

// Index returns the logical position of the cursor.
func (it *Iterator[T]) Index() int { return it.pos }

// Reset rewinds the cursor to before the first element, taking a fresh head/size snapshot.
func (it *Iterator[T]) Reset() {
	it.head = it.b.head
	it.size = it.b.size
	it.pos = -1
}

// All returns an iterator over logical positions and elements, front to back.
func (b *RingBuffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(i, b.items[b.physical(i)]) {
				return
			}
		}
	}
}

// Values returns an iterator over the elements, front to back.
func (b *RingBuffer[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < b.size; i++ {
			if !yield(b.items[b.physical(i)]) {
				return
			}
		}
	}
}

// Backward returns an iterator over logical positions and elements, back to front.
func (b *RingBuffer[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := b.size - 1; i >= 0; i-- {
			if !yield(i, b.items[b.physical(i)]) {
				return
			}
		}
	}
}
