package buffer

import (
	"context"
	"time"
)

// Buffer represents a generic buffer interface that all buffer implementations must satisfy.
// The buffer is parameterized by item type T for type safety.
type Buffer[T any] interface {
	// Write adds an item to the buffer. Returns an error if the operation fails.
	// Behavior depends on the overflow policy when buffer is full.
	Write(item T) error

	// WriteWithContext is Write that gives up when ctx ends. Only the Block policy waits.
	WriteWithContext(ctx context.Context, item T) error

	// WriteWithTimeout is WriteWithContext with a deadline of timeout from now.
	WriteWithTimeout(item T, timeout time.Duration) error

	// TryWrite adds an item only if there is free space. It never evicts and never blocks,
	// and reports whether the item was accepted.
	TryWrite(item T) (bool, error)

	// Read retrieves and removes one item from the buffer.
	// Returns the item and true if successful, zero value and false if buffer is empty.
	Read() (T, bool)

	// ReadWithContext retrieves and removes one item, waiting until one is available.
	// After Close, remaining items are still returned; once drained it returns an error
	// matching errors.ErrAlreadyStopped.
	ReadWithContext(ctx context.Context) (T, error)

	// ReadBatch retrieves and removes up to max items from the buffer.
	// Returns a slice containing the retrieved items (may be shorter than max).
	ReadBatch(max int) []T

	// Peek retrieves one item without removing it from the buffer.
	// Returns the item and true if successful, zero value and false if buffer is empty.
	Peek() (T, bool)

	// Snapshot returns a copy of the buffered items, oldest first.
	Snapshot() []T

	// Grow raises the capacity to n. Shrinking is rejected.
	Grow(n int) error

	// Size returns the current number of items in the buffer.
	Size() int

	// Capacity returns the maximum number of items the buffer can hold.
	Capacity() int

	// IsFull returns true if the buffer is at maximum capacity.
	IsFull() bool

	// IsEmpty returns true if the buffer contains no items.
	IsEmpty() bool

	// Clear removes all items from the buffer.
	Clear()

	// Stats returns buffer statistics (always available for observability).
	Stats() *Statistics

	// Close shuts down the buffer and wakes every waiting goroutine.
	Close() error
}

// OverflowPolicy defines how the buffer behaves when it reaches capacity.
type OverflowPolicy int

const (
	// DropOldest removes the oldest item to make room for new items.
	DropOldest OverflowPolicy = iota

	// DropNewest drops new items when the buffer is full.
	DropNewest

	// Block causes Write operations to block until space is available.
	Block
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// ParseOverflowPolicy converts a policy name as produced by String back to its value.
func ParseOverflowPolicy(name string) (OverflowPolicy, bool) {
	switch name {
	case "DropOldest", "drop_oldest":
		return DropOldest, true
	case "DropNewest", "drop_newest":
		return DropNewest, true
	case "Block", "block":
		return Block, true
	default:
		return DropOldest, false
	}
}

// DropCallback is called when an item is dropped due to overflow policy.
// It receives the item that was dropped.
type DropCallback[T any] func(item T)

// contextKey is used for context values in this package.
type contextKey string

const (
	// ContextKeyStats can be used to pass statistics through context.
	ContextKeyStats contextKey = "buffer-stats"
)

// WithStats adds statistics to the context.
func WithStats(ctx context.Context, stats *Statistics) context.Context {
	return context.WithValue(ctx, ContextKeyStats, stats)
}

// StatsFromContext retrieves statistics from the context.
func StatsFromContext(ctx context.Context) (*Statistics, bool) {
	stats, ok := ctx.Value(ContextKeyStats).(*Statistics)
	return stats, ok
}

// NewCircularBuffer creates a new circular buffer with the specified capacity and options.
// Stats are ALWAYS collected for observability. Metrics are optional via WithMetrics().
// Returns an error if metrics registration fails when metrics are requested.
func NewCircularBuffer[T any](capacity int, options ...Option[T]) (Buffer[T], error) {
	opts := applyOptions(options...)
	return newCircularBuffer(capacity, opts)
}
