package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/cyclicbuffer/config"
	"github.com/c360/cyclicbuffer/errors"
	"github.com/c360/cyclicbuffer/metric"
	"github.com/c360/cyclicbuffer/pkg/buffer"
	"github.com/c360/cyclicbuffer/pkg/retry"
	"github.com/c360/cyclicbuffer/pkg/ringbuffer"
	"github.com/c360/cyclicbuffer/pkg/worker"
)

// Window is a copy of the moving window taken after sample End (1-based).
type Window struct {
	Seq     int64
	End     int64
	Samples []float64
}

// Result summarizes a pipeline run.
type Result struct {
	Produced         int64
	Consumed         int64
	WindowsSubmitted int64
	WindowsSkipped   int64
	WindowsProcessed int64
	LastAverage      float64
	MinMean          float64
	MaxMean          float64
	Duration         time.Duration

	Buffer buffer.StatsSummary
	Pool   worker.PoolStats
}

// Pipeline feeds generated samples through a circular buffer into a moving window and
// hands full windows to a worker pool.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metric.Metrics

	samples buffer.Buffer[float64]
	pool    *worker.Pool[Window]

	mu     sync.Mutex
	result Result
}

// NewPipeline wires the sample buffer and the window pool. Both register their metrics
// with registry.
func NewPipeline(cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		logger:  logger,
		metrics: registry.CoreMetrics(),
		result:  Result{MinMean: math.Inf(1), MaxMean: math.Inf(-1)},
	}

	p.samples, err = buffer.NewCircularBuffer[float64](cfg.Buffer.Capacity,
		buffer.WithOverflowPolicy[float64](policy),
		buffer.WithMetrics[float64](registry, "samples"),
		buffer.WithDropCallback[float64](func(v float64) {
			logger.Debug("Sample dropped", "value", v)
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Pipeline", "NewPipeline", "create sample buffer")
	}

	p.pool, err = worker.NewPool[Window](cfg.Workers.Count, cfg.Workers.QueueSize, p.summarize,
		worker.WithMetricsRegistry[Window](registry, "windows"))
	if err != nil {
		return nil, errors.Wrap(err, "Pipeline", "NewPipeline", "create window pool")
	}

	return p, nil
}

// Run produces and consumes until the sample count is reached or ctx is cancelled. A
// cancelled ctx is a clean stop.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	if err := p.pool.Start(ctx); err != nil {
		return Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.samples.Close()
		return p.produce(gctx)
	})
	g.Go(func() error {
		return p.consume(gctx)
	})

	runErr := g.Wait()
	if stderrors.Is(runErr, context.Canceled) {
		p.logger.Info("Pipeline cancelled")
		runErr = nil
	}

	if err := p.pool.Stop(p.cfg.Workers.ShutdownTimeout); err != nil {
		p.logger.Warn("Window pool did not drain", "error", err)
		runErr = stderrors.Join(runErr, err)
	}

	return p.snapshot(time.Since(start)), runErr
}

func (p *Pipeline) produce(ctx context.Context) error {
	limit := rate.Inf
	if p.cfg.Producer.Rate > 0 {
		limit = rate.Limit(p.cfg.Producer.Rate)
	}
	limiter := rate.NewLimiter(limit, max(p.cfg.Producer.Burst, 1))

	next := newGenerator(p.cfg.Producer.Source, p.cfg.Producer.Seed)
	source := p.cfg.Producer.Source

	for i := 0; p.cfg.Producer.Samples == 0 || i < p.cfg.Producer.Samples; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := p.samples.WriteWithContext(ctx, next()); err != nil {
			return err
		}
		p.metrics.RecordSampleProduced(source)

		p.mu.Lock()
		p.result.Produced++
		p.mu.Unlock()
	}

	p.logger.Debug("Producer finished", "samples", p.cfg.Producer.Samples)
	return nil
}

func (p *Pipeline) consume(ctx context.Context) error {
	window, err := ringbuffer.New[float64](p.cfg.Window.Size, ringbuffer.WithOverwrite(true))
	if err != nil {
		return errors.Wrap(err, "Pipeline", "consume", "create window")
	}

	var (
		sum  float64
		seen int64
		seq  int64
		step = int64(p.cfg.Window.Step)
	)

	for {
		v, err := p.samples.ReadWithContext(ctx)
		if err != nil {
			if stderrors.Is(err, errors.ErrAlreadyStopped) {
				return nil
			}
			return err
		}
		seen++

		if window.IsFull() {
			oldest, _ := window.First()
			sum -= oldest
		}
		if err := window.Insert(v); err != nil {
			return errors.Wrap(err, "Pipeline", "consume", "insert sample")
		}
		sum += v
		avg := sum / float64(window.Size())

		p.metrics.RecordSamplesConsumed("window", 1)
		p.metrics.RecordWindowAverage(p.cfg.Producer.Source, avg)
		p.mu.Lock()
		p.result.Consumed++
		p.result.LastAverage = avg
		p.mu.Unlock()

		if !window.IsFull() || seen%step != 0 {
			continue
		}

		seq++
		if err := p.submit(ctx, Window{Seq: seq, End: seen, Samples: window.Linearize()}); err != nil {
			return err
		}
	}
}

// submit hands w to the pool. A queue that stays full past the retry budget skips the
// window rather than failing the run.
func (p *Pipeline) submit(ctx context.Context, w Window) error {
	err := p.pool.SubmitWithRetry(ctx, w, retry.Quick())
	if err == nil {
		p.mu.Lock()
		p.result.WindowsSubmitted++
		p.mu.Unlock()
		return nil
	}
	if ctx.Err() != nil || !errors.IsTransient(err) {
		return err
	}

	p.metrics.RecordError("pipeline", errors.Classify(err).String())
	p.logger.Warn("Window skipped", "seq", w.Seq, "error", err)
	p.mu.Lock()
	p.result.WindowsSkipped++
	p.mu.Unlock()
	return nil
}

// summarize is the pool's processor.
func (p *Pipeline) summarize(_ context.Context, w Window) error {
	start := time.Now()
	if len(w.Samples) == 0 {
		p.metrics.RecordWindowProcessed("empty")
		return fmt.Errorf("window %d is empty", w.Seq)
	}

	lo, hi, total := w.Samples[0], w.Samples[0], 0.0
	for _, v := range w.Samples {
		lo = min(lo, v)
		hi = max(hi, v)
		total += v
	}
	mean := total / float64(len(w.Samples))

	p.metrics.RecordProcessingDuration("summarize", time.Since(start))
	p.metrics.RecordWindowProcessed("ok")

	p.mu.Lock()
	p.result.WindowsProcessed++
	p.result.MinMean = min(p.result.MinMean, mean)
	p.result.MaxMean = max(p.result.MaxMean, mean)
	p.mu.Unlock()

	p.logger.Debug("Window summarized",
		"seq", w.Seq, "end", w.End, "mean", mean, "min", lo, "max", hi)
	return nil
}

func (p *Pipeline) snapshot(elapsed time.Duration) Result {
	p.mu.Lock()
	res := p.result
	p.mu.Unlock()

	if res.WindowsProcessed == 0 {
		res.MinMean, res.MaxMean = 0, 0
	}
	res.Duration = elapsed
	res.Buffer = p.samples.Stats().Summary()
	res.Pool = p.pool.Stats()
	return res
}

// newGenerator returns a deterministic sample source for name. Names are checked by
// config.Validate.
func newGenerator(name string, seed uint64) func() float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var i int
	switch name {
	case "random":
		return rng.Float64
	case "ramp":
		return func() float64 {
			i++
			return float64(i)
		}
	default:
		return func() float64 {
			i++
			return math.Sin(2*math.Pi*float64(i)/64) + 0.1*rng.NormFloat64()
		}
	}
}
