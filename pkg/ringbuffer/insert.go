package ringbuffer

import (
	"github.com/c360/cyclicbuffer/errors"
)

// Insert appends v at the tail. When the buffer is full and overwrite is allowed, v replaces
// the oldest element and head advances, which is a pop-front followed by a push-back. When
// overwrite is disallowed a full buffer rejects v with ErrBufferFull. A zero-capacity buffer
// rejects every insert.
func (b *RingBuffer[T]) Insert(v T) error {
	if len(b.items) == 0 || (b.size == len(b.items) && !b.overwrite) {
		return errors.WrapTransient(errors.ErrBufferFull, component, "Insert", "insert into full buffer")
	}
	b.push(v)
	return nil
}

// push applies the single-element insertion rule. Callers guarantee capacity > 0 and that
// the buffer is either not full or overwrite is allowed.
func (b *RingBuffer[T]) push(v T) {
	if b.size < len(b.items) {
		b.items[b.physical(b.size)] = v
		b.size++
		return
	}
	b.items[b.head] = v
	b.head++
	if b.head == len(b.items) {
		b.head = 0
	}
}

// InsertSlice inserts up to count elements of src starting at src[start], in order. With
// overwrite disallowed the number inserted is capped at Reserve(). It returns how many
// elements were accepted, which may be less than count without an error.
func (b *RingBuffer[T]) InsertSlice(src []T, start, count int) (int, error) {
	if start < 0 || start > len(src) {
		return 0, errors.WrapInvalid(errors.ErrIndexOutOfRange, component, "InsertSlice", "locate source")
	}
	if count < 0 {
		return 0, errors.WrapInvalid(errors.ErrNegativeSize, component, "InsertSlice", "count source")
	}
	if len(b.items) == 0 {
		return 0, nil
	}

	n := min(count, len(src)-start)
	if !b.overwrite {
		n = min(n, b.Reserve())
	}

	for _, v := range src[start : start+n] {
		b.push(v)
	}
	return n, nil
}

// InsertAll inserts every element of src in order and returns how many were accepted.
func (b *RingBuffer[T]) InsertAll(src ...T) (int, error) {
	return b.InsertSlice(src, 0, len(src))
}
