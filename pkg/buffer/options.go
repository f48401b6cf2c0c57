package buffer

import (
	"github.com/c360/cyclicbuffer/metric"
)

// Option configures buffer behavior using the functional options pattern.
type Option[T any] func(*bufferOptions[T])

// bufferOptions holds the construction-time configuration. Statistics are not an option;
// every buffer collects them.
type bufferOptions[T any] struct {
	overflowPolicy OverflowPolicy
	dropCallback   DropCallback[T]

	// metricsReg and metricsPrefix are both set or both empty
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
}

// WithOverflowPolicy sets the overflow behavior for the buffer.
// Defaults to DropOldest if not specified.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.overflowPolicy = policy
	}
}

// WithMetrics enables Prometheus metrics export for buffer statistics under the given
// component label. A nil registry or empty prefix leaves metrics disabled.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *bufferOptions[T]) {
		if registry == nil || prefix == "" {
			return
		}
		opts.metricsReg = registry
		opts.metricsPrefix = prefix
	}
}

// WithDropCallback sets a callback invoked with every item lost to the overflow policy or
// to Clear. It runs after the buffer lock is released, so it may call back into the buffer.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.dropCallback = callback
	}
}

func applyOptions[T any](options ...Option[T]) *bufferOptions[T] {
	opts := &bufferOptions[T]{overflowPolicy: DropOldest}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
