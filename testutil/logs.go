package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogRecord is one captured log entry with its attributes flattened to
// strings.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

type logSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that keeps every record in memory.
type LogCapture struct {
	sink  *logSink
	attrs []slog.Attr
}

// NewLogCapture returns a logger writing to a new capture, and the capture.
func NewLogCapture() (*slog.Logger, *LogCapture) {
	c := &LogCapture{sink: &logSink{}}
	return slog.New(c), c
}

// Enabled implements slog.Handler; every level is captured.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
	for _, a := range c.attrs {
		rec.Attrs[a.Key] = a.Value.Resolve().String()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Resolve().String()
		return true
	})

	c.sink.mu.Lock()
	c.sink.records = append(c.sink.records, rec)
	c.sink.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	merged = append(merged, c.attrs...)
	merged = append(merged, attrs...)
	return &LogCapture{sink: c.sink, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (c *LogCapture) WithGroup(string) slog.Handler {
	return c
}

// Records returns a copy of every captured record.
func (c *LogCapture) Records() []LogRecord {
	c.sink.mu.Lock()
	defer c.sink.mu.Unlock()
	out := make([]LogRecord, len(c.sink.records))
	copy(out, c.sink.records)
	return out
}

// Find returns the records at level whose attribute key equals value.
func (c *LogCapture) Find(level slog.Level, key, value string) []LogRecord {
	var out []LogRecord
	for _, r := range c.Records() {
		if r.Level == level && r.Attrs[key] == value {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records at level whose message contains text.
func (c *LogCapture) Count(level slog.Level, text string) int {
	n := 0
	for _, r := range c.Records() {
		if r.Level == level && strings.Contains(r.Message, text) {
			n++
		}
	}
	return n
}
