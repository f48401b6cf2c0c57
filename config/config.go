package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/c360/cyclicbuffer/errors"
	"github.com/c360/cyclicbuffer/pkg/buffer"
	"gopkg.in/yaml.v3"
)

// Sources lists the sample generators a producer can run.
var Sources = []string{"sine", "random", "ramp"}

// Config describes one sliding-window pipeline run.
type Config struct {
	Version  string         `yaml:"version" json:"version"` // Semantic version of the config format
	Buffer   BufferConfig   `yaml:"buffer" json:"buffer"`
	Producer ProducerConfig `yaml:"producer" json:"producer"`
	Window   WindowConfig   `yaml:"window" json:"window"`
	Workers  WorkerConfig   `yaml:"workers" json:"workers"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// BufferConfig sizes the sample buffer between producer and consumer.
type BufferConfig struct {
	Capacity       int    `yaml:"capacity" json:"capacity"`
	OverflowPolicy string `yaml:"overflow_policy" json:"overflow_policy"` // drop_oldest, drop_newest or block
}

// ProducerConfig controls the synthetic sample source.
type ProducerConfig struct {
	Source  string  `yaml:"source" json:"source"`
	Samples int     `yaml:"samples" json:"samples"` // 0 = run until cancelled
	Rate    float64 `yaml:"rate" json:"rate"`       // samples per second, 0 = unlimited
	Burst   int     `yaml:"burst" json:"burst"`
	Seed    uint64  `yaml:"seed" json:"seed"`
}

// WindowConfig controls the moving window.
type WindowConfig struct {
	Size int `yaml:"size" json:"size"`
	Step int `yaml:"step" json:"step"` // a full window is handed to the workers every Step samples
}

// WorkerConfig sizes the pool that summarizes windows.
type WorkerConfig struct {
	Count           int           `yaml:"count" json:"count"`
	QueueSize       int           `yaml:"queue_size" json:"queue_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Buffer: BufferConfig{
			Capacity:       256,
			OverflowPolicy: "drop_oldest",
		},
		Producer: ProducerConfig{
			Source:  "sine",
			Samples: 1000,
			Rate:    200,
			Burst:   10,
			Seed:    127,
		},
		Window: WindowConfig{
			Size: 32,
			Step: 8,
		},
		Workers: WorkerConfig{
			Count:           4,
			QueueSize:       64,
			ShutdownTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Policy returns the buffer overflow policy named in the config.
func (c *Config) Policy() (buffer.OverflowPolicy, error) {
	policy, ok := buffer.ParseOverflowPolicy(c.Buffer.OverflowPolicy)
	if !ok {
		return policy, invalid("buffer.overflow_policy %q is not one of drop_oldest, drop_newest, block",
			c.Buffer.OverflowPolicy)
	}
	return policy, nil
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if _, _, _, err := parseSemVer(c.Version); err != nil {
		return invalid("version: %v", err)
	}

	if c.Buffer.Capacity <= 0 {
		return invalid("buffer.capacity must be positive, got %d", c.Buffer.Capacity)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}

	if !slices.Contains(Sources, c.Producer.Source) {
		return invalid("producer.source %q is not one of %s", c.Producer.Source, strings.Join(Sources, ", "))
	}
	if c.Producer.Samples < 0 {
		return invalid("producer.samples cannot be negative, got %d", c.Producer.Samples)
	}
	if c.Producer.Rate < 0 {
		return invalid("producer.rate cannot be negative, got %g", c.Producer.Rate)
	}
	if c.Producer.Rate > 0 && c.Producer.Burst < 1 {
		return invalid("producer.burst must be at least 1 when rate is set, got %d", c.Producer.Burst)
	}

	if c.Window.Size <= 0 {
		return invalid("window.size must be positive, got %d", c.Window.Size)
	}
	if c.Window.Step <= 0 {
		return invalid("window.step must be positive, got %d", c.Window.Step)
	}

	if c.Workers.Count <= 0 {
		return invalid("workers.count must be positive, got %d", c.Workers.Count)
	}
	if c.Workers.QueueSize <= 0 {
		return invalid("workers.queue_size must be positive, got %d", c.Workers.QueueSize)
	}
	if c.Workers.ShutdownTimeout <= 0 {
		return invalid("workers.shutdown_timeout must be positive, got %s", c.Workers.ShutdownTimeout)
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return invalid("metrics.port out of range: %d", c.Metrics.Port)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with '/', got %q", c.Metrics.Path)
	}

	return nil
}

// String returns the YAML form of the config.
func (c *Config) String() string {
	data, _ := yaml.Marshal(c)
	return string(data)
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, fmt.Sprintf(format, args...)),
		"Config", "Validate", "validate configuration")
}

// CompareVersions compares two semver version strings
// Returns:
//
//	-1 if v1 < v2
//	 0 if v1 == v2
//	 1 if v1 > v2
//	error if either version is invalid
func CompareVersions(v1, v2 string) (int, error) {
	a1, b1, c1, err := parseSemVer(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version '%s': %w", v1, err)
	}
	a2, b2, c2, err := parseSemVer(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version '%s': %w", v2, err)
	}

	for _, pair := range [][2]int{{a1, a2}, {b1, b2}, {c1, c2}} {
		switch {
		case pair[0] > pair[1]:
			return 1, nil
		case pair[0] < pair[1]:
			return -1, nil
		}
	}
	return 0, nil
}

// parseSemVer parses a semantic version string (e.g., "1.2.3")
func parseSemVer(version string) (int, int, int, error) {
	if version == "" {
		return 0, 0, 0, fmt.Errorf("version cannot be empty")
	}

	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("version must be in format 'major.minor.patch', got '%s'", version)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("invalid version component '%s'", part)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}
