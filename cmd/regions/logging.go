package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jopela/regions/config"
)

// setupLogger builds the process logger. Without a log file, records go to
// stderr so they never mix with listings printed on stdout. The returned
// closer releases the log file, if any.
func setupLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	out := stderr
	closer := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closer = f.Close
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case config.LogFormatText:
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		"service", appName,
		"version", Version,
		"pid", os.Getpid(),
	)
	return logger, closer, nil
}
