package pipeline

import (
	"log/slog"
	"time"
)

// Report summarises one run. A run with missing countries still succeeded.
type Report struct {
	RunID     string        `json:"run_id"`
	Requested []string      `json:"requested"`
	Guides    int           `json:"guides"`
	Dropped   int           `json:"dropped"`
	Skipped   int           `json:"skipped"`
	Generated []string      `json:"generated"`
	Missing   []string      `json:"missing"`
	Duration  time.Duration `json:"duration"`
}

// Partial reports whether some requested country produced no guide.
func (r Report) Partial() bool {
	return len(r.Missing) > 0
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", r.RunID),
		slog.Int("requested", len(r.Requested)),
		slog.Int("guides", r.Guides),
		slog.Int("dropped", r.Dropped),
		slog.Int("skipped", r.Skipped),
		slog.Int("generated", len(r.Generated)),
		slog.Int("missing", len(r.Missing)),
		slog.Duration("duration", r.Duration),
	)
}
