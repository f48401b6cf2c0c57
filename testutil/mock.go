package testutil

import (
	"context"
	"sync"
)

// MockProcessor records the items handed to it by a worker pool. Fail, when set, decides
// which items return an error.
type MockProcessor[T any] struct {
	mu sync.Mutex

	Fail func(item T) error

	processed []T
	calls     int
}

// NewMockProcessor creates a processor that accepts every item.
func NewMockProcessor[T any]() *MockProcessor[T] {
	return &MockProcessor[T]{}
}

// Process matches the worker pool processor signature.
func (m *MockProcessor[T]) Process(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Fail != nil {
		if err := m.Fail(item); err != nil {
			return err
		}
	}
	m.processed = append(m.processed, item)
	return nil
}

// Processed returns a copy of the successfully processed items in arrival order.
func (m *MockProcessor[T]) Processed() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]T, len(m.processed))
	copy(out, m.processed)
	return out
}

// Calls returns how many times Process was invoked.
func (m *MockProcessor[T]) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
