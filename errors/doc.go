// Package errors provides standardized error handling patterns for cyclicbuffer packages.
//
// # Overview
//
// The errors package implements a three-class error classification system: Transient
// (caused by the current buffer state, the same call may succeed later), Invalid (bad
// argument, retrying the same call can never succeed), and Fatal (unrecoverable, stop
// processing).
//
// # Error Classification
//
//   - Transient: ErrBufferFull, ErrEmptyBuffer, ErrQueueFull, context cancellation
//   - Invalid: ErrInvalidCapacity, ErrInvalidSize, ErrNegativeSize, ErrIndexOutOfRange,
//     ErrNullTarget, ErrInsufficientSpace
//   - Fatal: ErrInvalidConfig, ErrAlreadyStopped
//
// The classification integrates with Go's standard error handling, supporting errors.Is(),
// errors.As(), and wrapping chains.
//
// # Quick Start
//
// Ring buffer operations return sentinels wrapped with context:
//
//	if err := rb.PopFront(); err != nil {
//	    if errors.Is(err, errors.ErrEmptyBuffer) {
//	        // nothing to drop
//	    }
//	}
//
// Check classification for retry logic:
//
//	if err := rb.Insert(v); err != nil && errors.IsTransient(err) {
//	    // drain the consumer side and try again
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: underlying error"
//
// For example:
//
//	RingBuffer.Insert: insert into full buffer failed: buffer is full and overwrite is disallowed
//
// WrapTransient, WrapInvalid and WrapFatal attach the class as a *ClassifiedError, whose
// Component and Operation fields carry the same context for structured logging:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    logger.Warn("buffer operation failed",
//	        "component", ce.Component,
//	        "operation", ce.Operation,
//	        "class", ce.Class.String())
//	}
//
// # Naming
//
// The package shadows the standard library errors package. Callers that need both
// import the standard one under an alias:
//
//	import (
//	    stderrors "errors"
//
//	    "github.com/c360/cyclicbuffer/errors"
//	)
package errors
