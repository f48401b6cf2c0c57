package buffer

import (
	"github.com/c360/cyclicbuffer/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// bufferMetrics holds Prometheus metrics for buffer operations.
type bufferMetrics struct {
	writes    prometheus.Counter
	reads     prometheus.Counter
	peeks     prometheus.Counter
	overflows prometheus.Counter
	drops     prometheus.Counter

	size        prometheus.Gauge
	capacity    prometheus.Gauge
	utilization prometheus.Gauge
}

// newBufferMetrics creates and registers buffer metrics with the provided registry.
// Every metric carries the prefix as its component label.
func newBufferMetrics(registry *metric.MetricsRegistry, prefix string) (*bufferMetrics, error) {
	labels := prometheus.Labels{"component": prefix}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "buffer",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "buffer",
			Name:        name,
			ConstLabels: labels,
			Help:        help,
		})
	}

	m := &bufferMetrics{
		writes:      counter("writes_total", "Total number of items accepted by the buffer"),
		reads:       counter("reads_total", "Total number of items removed from the buffer"),
		peeks:       counter("peeks_total", "Total number of buffer peek operations"),
		overflows:   counter("overflows_total", "Total number of writes that found the buffer full"),
		drops:       counter("drops_total", "Total number of items dropped due to overflow"),
		size:        gauge("size", "Current number of items in buffer"),
		capacity:    gauge("capacity", "Current buffer capacity"),
		utilization: gauge("utilization", "Buffer utilization as a fraction of capacity (0.0 to 1.0)"),
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"buffer_writes", m.writes},
		{"buffer_reads", m.reads},
		{"buffer_peeks", m.peeks},
		{"buffer_overflows", m.overflows},
		{"buffer_drops", m.drops},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.c); err != nil {
			return nil, err
		}
	}

	gauges := []struct {
		name string
		g    prometheus.Gauge
	}{
		{"buffer_size", m.size},
		{"buffer_capacity", m.capacity},
		{"buffer_utilization", m.utilization},
	}
	for _, g := range gauges {
		if err := registry.RegisterGauge(prefix, g.name, g.g); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// recordWrite increments the write counter and updates size/utilization.
func (m *bufferMetrics) recordWrite(size, capacity int) {
	m.writes.Inc()
	m.updateSize(size, capacity)
}

// recordReads adds n to the read counter and updates size/utilization.
func (m *bufferMetrics) recordReads(n, size, capacity int) {
	m.reads.Add(float64(n))
	m.updateSize(size, capacity)
}

func (m *bufferMetrics) recordPeek() {
	m.peeks.Inc()
}

func (m *bufferMetrics) recordOverflow() {
	m.overflows.Inc()
}

func (m *bufferMetrics) recordDrop() {
	m.drops.Inc()
}

func (m *bufferMetrics) setCapacity(capacity int) {
	m.capacity.Set(float64(capacity))
}

// updateSize sets the current buffer size and utilization.
func (m *bufferMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}
