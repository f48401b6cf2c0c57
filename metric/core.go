package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric this module exports.
const Namespace = "cyclicbuf"

// Metrics contains the process-level metrics of a sliding-window pipeline. Per-buffer and
// per-pool metrics are registered separately by pkg/buffer and pkg/worker.
type Metrics struct {
	SamplesProduced    *prometheus.CounterVec
	SamplesConsumed    *prometheus.CounterVec
	WindowsProcessed   *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec
	WindowAverage      *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance. The collectors are not registered.
func NewMetrics() *Metrics {
	return &Metrics{
		SamplesProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "samples",
				Name:      "produced_total",
				Help:      "Total number of samples produced",
			},
			[]string{"source"},
		),

		SamplesConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "samples",
				Name:      "consumed_total",
				Help:      "Total number of samples consumed",
			},
			[]string{"consumer"},
		),

		WindowsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "windows",
				Name:      "processed_total",
				Help:      "Total number of sliding windows processed",
			},
			[]string{"status"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and class",
			},
			[]string{"component", "type"},
		),

		WindowAverage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "windows",
				Name:      "average",
				Help:      "Moving average over the most recent window",
			},
			[]string{"source"},
		),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.SamplesProduced,
		c.SamplesConsumed,
		c.WindowsProcessed,
		c.ProcessingDuration,
		c.ErrorsTotal,
		c.WindowAverage,
	}
}

// RecordSampleProduced increments the produced sample counter
func (c *Metrics) RecordSampleProduced(source string) {
	c.SamplesProduced.WithLabelValues(source).Inc()
}

// RecordSamplesConsumed adds n to the consumed sample counter
func (c *Metrics) RecordSamplesConsumed(consumer string, n int) {
	c.SamplesConsumed.WithLabelValues(consumer).Add(float64(n))
}

// RecordWindowProcessed increments the processed window counter
func (c *Metrics) RecordWindowProcessed(status string) {
	c.WindowsProcessed.WithLabelValues(status).Inc()
}

// RecordProcessingDuration records processing time
func (c *Metrics) RecordProcessingDuration(operation string, duration time.Duration) {
	c.ProcessingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError increments error counter
func (c *Metrics) RecordError(component, errorType string) {
	c.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordWindowAverage sets the moving average gauge
func (c *Metrics) RecordWindowAverage(source string, avg float64) {
	c.WindowAverage.WithLabelValues(source).Set(avg)
}
