// Package metric provides Prometheus-based metrics collection and an HTTP server for the
// cyclicbuf pipeline.
//
// The package offers a centralized metrics registry managing both core pipeline metrics
// (samples produced and consumed, windows processed, errors) and component-specific
// metrics registered by pkg/buffer and pkg/worker. It includes an HTTP server exposing
// them in Prometheus format.
//
// # Architecture
//
//  1. Core Metrics: pipeline-level metrics registered automatically (Metrics type)
//  2. Component Registry: keyed registration for component metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	if _, err := server.Listen(); err != nil {
//	    return err
//	}
//	go func() {
//	    if err := server.Serve(); err != nil {
//	        slog.Error("metrics server failed", "error", err)
//	    }
//	}()
//	defer server.Stop(context.Background())
//
// Start is Listen followed by Serve for callers that own the goroutine themselves.
//
//	core := registry.CoreMetrics()
//	core.RecordSampleProduced("producer")
//	core.RecordWindowAverage("producer", avg)
//
// Metrics are served at http://localhost:9090/metrics and health at /health.
//
// # Core Metrics
//
//   - cyclicbuf_samples_produced_total{source}
//   - cyclicbuf_samples_consumed_total{consumer}
//   - cyclicbuf_windows_processed_total{status}
//   - cyclicbuf_processing_duration_seconds{operation}
//   - cyclicbuf_errors_total{component,type}
//   - cyclicbuf_windows_average{source}
//
// Vector metrics only appear in a scrape after their first observation.
//
// # Component Metrics
//
// Components register their own collectors through MetricsRegistrar. Each registration is
// keyed by component name and metric name; registering the same key twice fails with an
// invalid-class error, and a Prometheus name clash fails with a "prometheus conflict"
// error:
//
//	writes := prometheus.NewCounter(prometheus.CounterOpts{
//	    Namespace:   metric.Namespace,
//	    Subsystem:   "buffer",
//	    Name:        "writes_total",
//	    ConstLabels: prometheus.Labels{"component": "samples"},
//	    Help:        "Total number of buffer write operations",
//	})
//	if err := registry.RegisterCounter("samples", "buffer_writes", writes); err != nil {
//	    return err
//	}
//
// Unregister releases the key so the component can be rebuilt.
//
// # Thread Safety
//
// MetricsRegistry is safe for concurrent use. Prometheus collectors are themselves
// goroutine-safe.
package metric
