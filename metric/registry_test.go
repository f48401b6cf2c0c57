package metric

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/cyclicbuffer/errors"
)

// gatheredNames returns the metric family names currently exposed by the registry.
func gatheredNames(t *testing.T, registry *MetricsRegistry) map[string]bool {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.Same(t, registry.Metrics, registry.CoreMetrics())

	names := gatheredNames(t, registry)
	assert.True(t, names["go_goroutines"], "go collector should be registered")
}

func TestMetricsRegistry_Register(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "A test counter"})
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "A test gauge"})
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_histogram", Help: "A test histogram"})
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counter_vec", Help: "h"}, []string{"l"})
	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_gauge_vec", Help: "h"}, []string{"l"})
	histogramVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_histogram_vec", Help: "h"},
		[]string{"l"})

	require.NoError(t, registry.RegisterCounter("svc", "test_counter", counter))
	require.NoError(t, registry.RegisterGauge("svc", "test_gauge", gauge))
	require.NoError(t, registry.RegisterHistogram("svc", "test_histogram", histogram))
	require.NoError(t, registry.RegisterCounterVec("svc", "test_counter_vec", counterVec))
	require.NoError(t, registry.RegisterGaugeVec("svc", "test_gauge_vec", gaugeVec))
	require.NoError(t, registry.RegisterHistogramVec("svc", "test_histogram_vec", histogramVec))

	counter.Inc()
	gauge.Set(42)
	histogram.Observe(0.5)
	counterVec.WithLabelValues("a").Inc()
	gaugeVec.WithLabelValues("a").Set(1)
	histogramVec.WithLabelValues("a").Observe(1)

	names := gatheredNames(t, registry)
	for _, name := range []string{
		"test_counter", "test_gauge", "test_histogram",
		"test_counter_vec", "test_gauge_vec", "test_histogram_vec",
	} {
		assert.True(t, names[name], "%s should be registered", name)
		assert.True(t, registry.Registered("svc", name))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(counter))
	assert.Equal(t, 42.0, testutil.ToFloat64(gauge))
}

func TestMetricsRegistry_PreventDuplicateRegistration(t *testing.T) {
	registry := NewMetricsRegistry()

	counter1 := prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_counter", Help: "First counter"})
	counter2 := prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_counter", Help: "First counter"})

	require.NoError(t, registry.RegisterCounter("service1", "duplicate_counter", counter1))

	// Same key fails at the registry level
	err := registry.RegisterCounter("service1", "duplicate_counter", counter2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.True(t, cerrors.IsInvalid(err))

	// Different key, same Prometheus name, fails at the Prometheus level
	err = registry.RegisterCounter("service2", "duplicate_counter", counter2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prometheus conflict")
	assert.False(t, registry.Registered("service2", "duplicate_counter"))
}

func TestMetricsRegistry_UnregisterMetric(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "unregister_counter", Help: "A counter"})
	require.NoError(t, registry.RegisterCounter("test-service", "unregister_counter", counter))
	assert.True(t, gatheredNames(t, registry)["unregister_counter"])

	assert.True(t, registry.Unregister("test-service", "unregister_counter"))
	assert.False(t, gatheredNames(t, registry)["unregister_counter"])
	assert.False(t, registry.Unregister("test-service", "unregister_counter"), "second unregister is a no-op")

	// The key is free again
	require.NoError(t, registry.RegisterCounter("test-service", "unregister_counter", counter))
}

func TestMetricsRegistry_ThreadSafety(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	numGoroutines := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			name := fmt.Sprintf("concurrent_counter_%d", id)
			counter := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: "A concurrent counter"})
			assert.NoError(t, registry.RegisterCounter("concurrent-service", name, counter))
		}(i)
	}
	wg.Wait()

	counterCount := 0
	for name := range gatheredNames(t, registry) {
		if strings.HasPrefix(name, "concurrent_counter_") {
			counterCount++
		}
	}
	assert.Equal(t, numGoroutines, counterCount, "All concurrent counters should be registered")
}

func TestMetricsRegistrar_Interface(t *testing.T) {
	var registrar MetricsRegistrar = NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "interface_counter", Help: "h"})
	require.NoError(t, registrar.RegisterCounter("interface-service", "interface_counter", counter))
	assert.True(t, registrar.Unregister("interface-service", "interface_counter"))
}

func TestCoreMetrics(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	core.RecordSampleProduced("producer")
	core.RecordSampleProduced("producer")
	core.RecordSamplesConsumed("worker", 5)
	core.RecordWindowProcessed("success")
	core.RecordProcessingDuration("window", 100*time.Millisecond)
	core.RecordError("RingBuffer", "transient")
	core.RecordWindowAverage("producer", 1.5)

	names := gatheredNames(t, registry)
	for _, name := range []string{
		"cyclicbuf_samples_produced_total",
		"cyclicbuf_samples_consumed_total",
		"cyclicbuf_windows_processed_total",
		"cyclicbuf_processing_duration_seconds",
		"cyclicbuf_errors_total",
		"cyclicbuf_windows_average",
	} {
		assert.True(t, names[name], "core metric %s should be exposed", name)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(core.SamplesProduced.WithLabelValues("producer")))
	assert.Equal(t, 5.0, testutil.ToFloat64(core.SamplesConsumed.WithLabelValues("worker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.ErrorsTotal.WithLabelValues("RingBuffer", "transient")))
	assert.Equal(t, 1.5, testutil.ToFloat64(core.WindowAverage.WithLabelValues("producer")))
}
