// Package retry provides exponential backoff retry logic for transient failures.
//
// Do keeps calling a function while it fails with errors that may clear up later, such
// as a full queue. It stops at once on errors wrapped with NonRetryable and on errors
// the errors package classifies as invalid or fatal.
//
// # Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay
//   - Quick(): 10 attempts, 5ms-100ms delay, sized for waiting on a draining queue
//
// # Usage
//
//	err := retry.Do(ctx, retry.Quick(), func() error {
//		return pool.Submit(window)
//	})
//
// Retry with result:
//
//	n, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (int, error) {
//		return ring.InsertSlice(batch)
//	})
//
// Delays grow by Multiplier up to MaxDelay. With AddJitter each wait is extended by up to
// 25%. Cancelling ctx aborts both attempts and waits, and the returned error wraps
// ctx.Err().
package retry
