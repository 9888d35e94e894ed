// Package main implements the regions command, which builds one regional
// guide per requested country from a tree of city guides.
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

	"github.com/joho/godotenv"

	"github.com/jopela/regions/config"
	"github.com/jopela/regions/country"
	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/metric"
)

// Build information constants
const (
	Version = "0.3.0"
	appName = "regions"
)

// Process exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitPanic       = 2
	exitNoCountries = 3
	exitNoGuides    = 4
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitPanic)
		}
	}()

	// A missing .env file is fine
	_ = godotenv.Load()

	err := run(os.Args[1:], os.Stdout, os.Stderr)
	code := exitCode(err)
	if code != exitOK {
		slog.Error("Run failed", "error", err, "exit_code", code)
	}
	os.Exit(code)
}

// exitCode maps the outcome of run to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case stderrors.Is(err, errors.ErrNoCountries):
		return exitNoCountries
	case stderrors.Is(err, errors.ErrNoGuides):
		return exitNoGuides
	default:
		return exitFailure
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cli.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg.Log, stderr)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	if cli.CountryList {
		return printCountries(stdout, country.ISO())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	a, err := newApp(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cli.Resources {
		return printResources(ctx, stdout, a.resolver, a.countries, logger)
	}

	logger.Info("Starting regions",
		"version", Version,
		"endpoint", cfg.SPARQL.Endpoint,
		"guides", cfg.Guides.Root,
		"countries", cfg.Countries)

	guides, report, runErr := a.orchestrator.Run(ctx, cfg.Countries)
	if runErr == nil {
		if err := a.sink.Write(ctx, guides); err != nil {
			runErr = fmt.Errorf("write regional guides: %w", err)
		}
	}

	pushMetrics(registry, cfg.Metrics, logger)

	if runErr != nil {
		return runErr
	}
	if report.Partial() {
		logger.Warn("Run completed without some requested countries", "missing", report.Missing)
	}
	return nil
}

// loadConfig layers the optional config file, environment and flags.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	loader.EnableValidation(false)
	if cli.ConfigPath != "" {
		loader.AddLayer(cli.ConfigPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cli.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// pushMetrics sends the run metrics to the pushgateway, if configured.
// Failures are logged and never change the run outcome.
func pushMetrics(registry *metric.MetricsRegistry, cfg config.MetricsConfig, logger *slog.Logger) {
	if cfg.Pushgateway == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := registry.Push(ctx, cfg.Pushgateway, cfg.Job); err != nil {
		logger.Warn("Cannot push run metrics", "pushgateway", cfg.Pushgateway, "error", err)
	}
}
