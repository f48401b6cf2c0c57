package config

import (
	"os"
	"strconv"

	"github.com/c360/cyclicbuffer/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CYCLICBUF_WINDOW_SIZE.
const EnvPrefix = "CYCLICBUF"

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		envPrefix: EnvPrefix,
		lookupEnv: os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load starts from Default, decodes each layer over it, then applies environment overrides.
// Fields absent from a layer keep their previous value.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", "read "+path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", "decode "+path)
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) {
		if val, ok := l.lookupEnv(l.envPrefix + "_" + name); ok && val != "" {
			*dst = val
		}
	}
	num := func(name string, dst *int) error {
		val, ok := l.lookupEnv(l.envPrefix + "_" + name)
		if !ok || val == "" {
			return nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "applyEnvOverrides", "parse "+l.envPrefix+"_"+name)
		}
		*dst = n
		return nil
	}

	str("BUFFER_POLICY", &cfg.Buffer.OverflowPolicy)
	str("PRODUCER_SOURCE", &cfg.Producer.Source)

	ints := []struct {
		name string
		dst  *int
	}{
		{"BUFFER_CAPACITY", &cfg.Buffer.Capacity},
		{"SAMPLES", &cfg.Producer.Samples},
		{"WINDOW_SIZE", &cfg.Window.Size},
		{"WINDOW_STEP", &cfg.Window.Step},
		{"WORKERS", &cfg.Workers.Count},
		{"QUEUE_SIZE", &cfg.Workers.QueueSize},
	}
	for _, o := range ints {
		if err := num(o.name, o.dst); err != nil {
			return err
		}
	}

	if val, ok := l.lookupEnv(l.envPrefix + "_RATE"); ok && val != "" {
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "applyEnvOverrides", "parse "+l.envPrefix+"_RATE")
		}
		cfg.Producer.Rate = rate
	}

	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "Config", "SaveToFile", "encode")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapTransient(err, "Config", "SaveToFile", "write "+path)
	}
	return nil
}
