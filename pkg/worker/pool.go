package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/cyclicbuffer/errors"
	"github.com/c360/cyclicbuffer/metric"
	"github.com/c360/cyclicbuffer/pkg/buffer"
	"github.com/c360/cyclicbuffer/pkg/retry"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultWorkers   = 10
	defaultQueueSize = 1000
)

// Pool is a fixed set of goroutines draining a bounded circular queue of work items.
type Pool[T any] struct {
	workers   int
	queueSize int
	processor func(context.Context, T) error

	queue   buffer.Buffer[T]
	metrics *poolMetrics
	wg      sync.WaitGroup
	quit    chan struct{}

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
	updateInterval  time.Duration
}

// poolMetrics holds Prometheus metrics for worker pool monitoring
type poolMetrics struct {
	queueDepth     prometheus.Gauge
	utilization    prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// Option represents a configuration option for the worker pool
type Option[T any] func(*Pool[T])

// WithMetricsRegistry registers the pool's metrics with registry, labelled with prefix.
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		p.metricsRegistry = registry
		p.metricsPrefix = prefix
	}
}

// WithUpdateInterval sets how often the queue depth gauges are refreshed. Default 1s.
func WithUpdateInterval[T any](d time.Duration) Option[T] {
	return func(p *Pool[T]) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// NewPool creates a worker pool. Non-positive workers or queueSize fall back to defaults.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) (*Pool[T], error) {
	if processor == nil {
		return nil, errors.WrapInvalid(ErrNilProcessor, "Pool", "NewPool", "validate processor")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	pool := &Pool[T]{
		workers:        workers,
		queueSize:      queueSize,
		processor:      processor,
		quit:           make(chan struct{}),
		updateInterval: time.Second,
	}
	for _, opt := range opts {
		opt(pool)
	}

	queue, err := buffer.NewCircularBuffer[T](queueSize, buffer.WithOverflowPolicy[T](buffer.DropNewest))
	if err != nil {
		return nil, errors.Wrap(err, "Pool", "NewPool", "create queue")
	}
	pool.queue = queue

	if pool.metricsRegistry != nil && pool.metricsPrefix != "" {
		if err := pool.initializeMetrics(); err != nil {
			return nil, err
		}
	}

	return pool, nil
}

func (p *Pool[T]) initializeMetrics() error {
	labels := prometheus.Labels{"pool": p.metricsPrefix}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace, Subsystem: "worker", Name: name, Help: help, ConstLabels: labels,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace, Subsystem: "worker", Name: name, Help: help, ConstLabels: labels,
		})
	}

	m := &poolMetrics{
		queueDepth:  gauge("queue_depth", "Current worker pool queue depth"),
		utilization: gauge("utilization", "Worker pool queue utilization (0-1)"),
		submitted:   counter("submitted_total", "Total work items submitted"),
		processed:   counter("processed_total", "Total work items processed"),
		failed:      counter("failed_total", "Total work items that failed processing"),
		dropped:     counter("dropped_total", "Total work items rejected by a full queue"),
		processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "worker",
			Name:        "processing_duration_seconds",
			Help:        "Time spent processing work items",
			ConstLabels: labels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"status"}),
	}

	service := p.metricsPrefix
	steps := []func() error{
		func() error { return p.metricsRegistry.RegisterGauge(service, "worker_queue_depth", m.queueDepth) },
		func() error { return p.metricsRegistry.RegisterGauge(service, "worker_utilization", m.utilization) },
		func() error { return p.metricsRegistry.RegisterCounter(service, "worker_submitted", m.submitted) },
		func() error { return p.metricsRegistry.RegisterCounter(service, "worker_processed", m.processed) },
		func() error { return p.metricsRegistry.RegisterCounter(service, "worker_failed", m.failed) },
		func() error { return p.metricsRegistry.RegisterCounter(service, "worker_dropped", m.dropped) },
		func() error {
			return p.metricsRegistry.RegisterHistogramVec(service, "worker_processing_duration", m.processingTime)
		},
	}
	for _, register := range steps {
		if err := register(); err != nil {
			return err
		}
	}

	p.metrics = m
	return nil
}

// Submit queues work without waiting. A full queue yields an error matching ErrQueueFull.
func (p *Pool[T]) Submit(work T) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return errors.WrapInvalid(ErrPoolNotStarted, "Pool", "Submit", "check lifecycle")
	}
	if p.stopped {
		return errors.WrapInvalid(ErrPoolStopped, "Pool", "Submit", "check lifecycle")
	}

	ok, err := p.queue.TryWrite(work)
	if err != nil {
		return errors.Wrap(err, "Pool", "Submit", "enqueue work")
	}
	if !ok {
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return errors.WrapTransient(ErrQueueFull, "Pool", "Submit", "enqueue work")
	}

	p.submitted.Add(1)
	if p.metrics != nil {
		p.metrics.submitted.Inc()
		p.metrics.queueDepth.Set(float64(p.queue.Size()))
	}
	return nil
}

// SubmitWithRetry retries Submit with backoff while the queue is full. Lifecycle errors
// are returned immediately.
func (p *Pool[T]) SubmitWithRetry(ctx context.Context, work T, cfg retry.Config) error {
	return retry.Do(ctx, cfg, func() error {
		return p.Submit(work)
	})
}

// Start launches the workers. Cancelling ctx stops them without draining the queue.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.stopped {
		return errors.WrapInvalid(ErrPoolStopped, "Pool", "Start", "check lifecycle")
	}
	if p.started {
		return errors.WrapInvalid(ErrPoolAlreadyStarted, "Pool", "Start", "check lifecycle")
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	if p.metrics != nil {
		p.wg.Add(1)
		go p.metricsUpdater(ctx)
	}

	p.started = true
	return nil
}

// Stop closes the queue and waits up to timeout for the workers to drain it.
// The pool accepts no more work afterwards, even when the wait times out. Submit
// fails with ErrPoolStopped while Stop is still waiting.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return nil
	}
	p.stopped = true
	closeErr := p.queue.Close()
	close(p.quit)
	p.lifecycleMu.Unlock()

	if closeErr != nil {
		return errors.Wrap(closeErr, "Pool", "Stop", "close queue")
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		if p.metrics != nil {
			p.updateGauges()
		}
		return nil
	case <-timer.C:
		return errors.WrapTransient(ErrStopTimeout, "Pool", "Stop", "wait for workers")
	}
}

// Stats returns current pool statistics
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: p.queue.Size(),
		Submitted:  p.submitted.Load(),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
	}
}

// PoolStats represents worker pool statistics
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// worker runs until ctx ends or the closed queue is empty.
func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for ctx.Err() == nil {
		work, err := p.queue.ReadWithContext(ctx)
		if err != nil {
			return
		}
		p.process(ctx, work)
	}
}

func (p *Pool[T]) process(ctx context.Context, work T) {
	start := time.Now()
	err := p.processor(ctx, work)
	duration := time.Since(start)

	p.processed.Add(1)
	if err != nil {
		p.failed.Add(1)
	}

	if p.metrics != nil {
		p.metrics.processed.Inc()
		status := "success"
		if err != nil {
			p.metrics.failed.Inc()
			status = "error"
		}
		p.metrics.processingTime.WithLabelValues(status).Observe(duration.Seconds())
	}
}

// metricsUpdater refreshes the queue gauges until ctx ends or the pool stops.
func (p *Pool[T]) metricsUpdater(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case <-ticker.C:
			p.updateGauges()
		}
	}
}

func (p *Pool[T]) updateGauges() {
	depth := float64(p.queue.Size())
	p.metrics.queueDepth.Set(depth)
	p.metrics.utilization.Set(depth / float64(p.queueSize))
}
