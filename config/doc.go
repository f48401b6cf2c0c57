// Package config loads and validates the configuration of a sliding-window pipeline.
//
// # Loading
//
// A Loader starts from Default and decodes each YAML layer on top of it, so a layer only
// needs the keys it changes. JSON is accepted too since it is valid YAML.
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yaml")
//	loader.AddLayer("configs/fast.yaml") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//
// Environment variables with the CYCLICBUF_ prefix are applied after the last layer:
//
//	CYCLICBUF_BUFFER_CAPACITY, CYCLICBUF_BUFFER_POLICY, CYCLICBUF_PRODUCER_SOURCE,
//	CYCLICBUF_SAMPLES, CYCLICBUF_RATE, CYCLICBUF_WINDOW_SIZE, CYCLICBUF_WINDOW_STEP,
//	CYCLICBUF_WORKERS, CYCLICBUF_QUEUE_SIZE
//
// # Example
//
//	version: 1.0.0
//	buffer:
//	  capacity: 256
//	  overflow_policy: drop_oldest
//	producer:
//	  source: sine
//	  samples: 1000
//	  rate: 200
//	  burst: 10
//	window:
//	  size: 32
//	  step: 8
//	workers:
//	  count: 4
//	  queue_size: 64
//	  shutdown_timeout: 5s
//	metrics:
//	  enabled: true
//	  port: 9090
//	  path: /metrics
//
// # Validation
//
// Validate reports the first problem it finds. Every validation error matches
// errors.ErrInvalidConfig and is classified invalid.
package config
