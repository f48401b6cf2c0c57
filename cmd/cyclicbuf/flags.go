package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/c360/cyclicbuffer/config"
)

// CLIConfig holds command-line configuration. Zero values for the pipeline flags leave
// the loaded configuration untouched.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Window      int
	Samples     int
	Rate        float64
	Workers     int
	MetricsPort int
	ShowVersion bool
	Validate    bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("CYCLICBUF_CONFIG", ""),
		"Path to a YAML configuration file (env: CYCLICBUF_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("CYCLICBUF_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: CYCLICBUF_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("CYCLICBUF_LOG_FORMAT", "json"),
		"Log format: json, text (env: CYCLICBUF_LOG_FORMAT)")

	fs.IntVar(&cfg.Window, "window", 0, "Moving window size, overrides window.size")
	fs.IntVar(&cfg.Samples, "samples", 0, "Number of samples to produce, overrides producer.samples")
	fs.Float64Var(&cfg.Rate, "rate", -1, "Samples per second (0 = unlimited), overrides producer.rate")
	fs.IntVar(&cfg.Workers, "workers", 0, "Window worker count, overrides workers.count")

	fs.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("CYCLICBUF_METRICS_PORT", 0),
		"Serve Prometheus metrics on this port, 0 keeps the config setting (env: CYCLICBUF_METRICS_PORT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(stderr, fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Window < 0 {
		return fmt.Errorf("invalid window: %d", cfg.Window)
	}
	if cfg.Samples < 0 {
		return fmt.Errorf("invalid samples: %d", cfg.Samples)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", cfg.Workers)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

// applyFlags copies the pipeline flags that were set onto cfg.
func applyFlags(cli *CLIConfig, cfg *config.Config) {
	if cli.Window > 0 {
		cfg.Window.Size = cli.Window
	}
	if cli.Samples > 0 {
		cfg.Producer.Samples = cli.Samples
	}
	if cli.Rate >= 0 {
		cfg.Producer.Rate = cli.Rate
	}
	if cli.Workers > 0 {
		cfg.Workers.Count = cli.Workers
	}
	if cli.MetricsPort > 0 {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = cli.MetricsPort
	}
}

func printDetailedHelp(w io.Writer, fs *flag.FlagSet) {
	_, _ = fmt.Fprintf(w, `%s - sliding-window demo over a fixed-capacity circular buffer

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Run with defaults
  %[1]s

  # Larger window, text logs, metrics on :9090
  %[1]s -window=128 -log-format=text -metrics-port=9090

  # Validate a configuration file only
  %[1]s -config=configs/run.yaml -validate

Version: %[2]s
Build: %[3]s
`, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
