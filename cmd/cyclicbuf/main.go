// Package main implements cyclicbuf, a sliding-window demo built on the cyclicbuffer
// packages: a rate-limited producer writes samples into a circular buffer, a consumer keeps
// a moving average over a ring of the last N samples, and a worker pool summarizes windows.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/c360/cyclicbuffer/config"
	"github.com/c360/cyclicbuffer/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "cyclicbuf"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()

	if err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cli); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cli.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(stdout, cli.LogLevel, cli.LogFormat, uuid.NewString())
	slog.SetDefault(logger)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	if cli.Validate {
		logger.Info("Configuration is valid", "config_path", cli.ConfigPath)
		return nil
	}

	logger.Info("Starting cyclicbuf",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cli.ConfigPath,
		"window", cfg.Window.Size,
		"samples", cfg.Producer.Samples,
		"overflow_policy", cfg.Buffer.OverflowPolicy)

	registry := metric.NewMetricsRegistry()
	pipeline, err := NewPipeline(cfg, registry, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	var server *metric.Server
	if cfg.Metrics.Enabled {
		server = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		address, err := server.Listen()
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		go func() {
			if err := server.Serve(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		logger.Info("Metrics server listening", "address", address)
	}

	result, runErr := pipeline.Run(ctx)

	if server != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Stop(stopCtx); err != nil {
			logger.Warn("Metrics server stop failed", "error", err)
		}
		cancel()
	}

	logSummary(logger, result)
	return runErr
}

// loadConfig loads the file named on the command line, if any, and applies flag overrides.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	if cli.ConfigPath != "" {
		loader.AddLayer(cli.ConfigPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyFlags(cli, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func logSummary(logger *slog.Logger, r Result) {
	logger.Info("Pipeline finished",
		"duration", r.Duration,
		"produced", r.Produced,
		"consumed", r.Consumed,
		"last_average", r.LastAverage,
		slog.Group("windows",
			"submitted", r.WindowsSubmitted,
			"skipped", r.WindowsSkipped,
			"processed", r.WindowsProcessed,
			"min_mean", r.MinMean,
			"max_mean", r.MaxMean),
		slog.Group("buffer",
			"writes", r.Buffer.Writes,
			"reads", r.Buffer.Reads,
			"overflows", r.Buffer.Overflows,
			"drops", r.Buffer.Drops,
			"max_size", r.Buffer.MaxSize,
			"drop_rate", r.Buffer.DropRate),
		slog.Group("pool",
			"workers", r.Pool.Workers,
			"processed", r.Pool.Processed,
			"failed", r.Pool.Failed,
			"dropped", r.Pool.Dropped))
}
