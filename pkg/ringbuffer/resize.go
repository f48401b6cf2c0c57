package ringbuffer

import (
	"github.com/c360/cyclicbuffer/errors"
)

func (b *RingBuffer[T]) checkResize(newSize int, method string) error {
	if newSize < 0 {
		return errors.WrapInvalid(errors.ErrNegativeSize, component, method, "resize")
	}
	if newSize > len(b.items) {
		return errors.WrapInvalid(errors.ErrInvalidSize, component, method, "resize")
	}
	return nil
}

// Resize changes the size from the back. Growing appends copies of fill at the tail, shrinking
// drops the newest elements. Head never moves. The overwrite policy does not apply since the
// size never exceeds capacity.
func (b *RingBuffer[T]) Resize(newSize int, fill T) error {
	if err := b.checkResize(newSize, "Resize"); err != nil {
		return err
	}

	for b.size > newSize {
		b.dropBack()
	}
	for b.size < newSize {
		b.items[b.physical(b.size)] = fill
		b.size++
	}
	return nil
}

// ResizeFront changes the size from the front. Growing prepends copies of fill, moving head
// backward; shrinking drops the oldest elements, moving head forward. The tail stays put.
func (b *RingBuffer[T]) ResizeFront(newSize int, fill T) error {
	if err := b.checkResize(newSize, "ResizeFront"); err != nil {
		return err
	}

	for b.size > newSize {
		b.dropFront()
	}
	for b.size < newSize {
		b.head = b.advance(b.head, -1)
		b.items[b.head] = fill
		b.size++
	}
	return nil
}
