// Package worker provides a generic worker pool that drains a bounded circular queue.
//
// # Overview
//
// A Pool runs a fixed number of goroutines. Each one blocks in ReadWithContext on a
// pkg/buffer circular buffer created with the DropNewest policy, so the queue is a ring of
// the configured size and never reorders or evicts accepted work.
//
//	pool, err := worker.NewPool[Window](4, 64, func(ctx context.Context, w Window) error {
//		return summarize(ctx, w)
//	})
//	if err != nil {
//		return err
//	}
//	if err := pool.Start(ctx); err != nil {
//		return err
//	}
//	defer pool.Stop(5 * time.Second)
//
// # Submitting
//
// Submit never waits. When the queue is full it returns an error matching ErrQueueFull
// that errors.IsTransient reports as transient, and the item counts as dropped.
// SubmitWithRetry wraps Submit in retry.Do and backs off until a worker frees a slot;
// lifecycle errors such as ErrPoolNotStarted are classified invalid and end the retry at once.
//
// # Shutdown
//
// Stop closes the queue. Workers keep reading until the queue is empty and then exit, so
// everything accepted before Stop is processed unless the timeout expires first, in which
// case Stop returns ErrStopTimeout. Cancelling the context given to Start makes workers exit
// after their current item without draining.
//
// # Observability
//
// Stats are always kept with atomic counters. WithMetricsRegistry additionally exports
// cyclicbuf_worker_* counters, queue gauges and a processing duration histogram labelled
// with pool=<prefix>.
package worker
