package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Drop stages used as the "stage" label of GuidesDropped.
const (
	StageSearch  = "search"
	StageCity    = "city"
	StageCountry = "country"
)

// Metrics contains the run-level metrics shared by the gateway and the pipeline
type Metrics struct {
	// Graph query metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram

	// Pipeline metrics
	GuidesDiscovered prometheus.Counter
	GuidesDropped    *prometheus.CounterVec
	GroupsSkipped    *prometheus.CounterVec
	GuidesGenerated  prometheus.Counter
	CountriesMissing prometheus.Counter
	RunDuration      prometheus.Histogram
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "regions",
				Subsystem: "sparql",
				Name:      "queries_total",
				Help:      "Total number of graph queries by outcome (rows, empty, error)",
			},
			[]string{"outcome"},
		),

		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "regions",
				Subsystem: "sparql",
				Name:      "query_duration_seconds",
				Help:      "Graph query round trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		GuidesDiscovered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regions",
				Subsystem: "pipeline",
				Name:      "guides_discovered_total",
				Help:      "City guide files found by discovery",
			},
		),

		GuidesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "regions",
				Subsystem: "pipeline",
				Name:      "guides_dropped_total",
				Help:      "City guides excluded from grouping, by stage",
			},
			[]string{"stage"},
		),

		GroupsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "regions",
				Subsystem: "pipeline",
				Name:      "groups_skipped_total",
				Help:      "Country groups not turned into a regional guide, by reason",
			},
			[]string{"reason"},
		),

		GuidesGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regions",
				Subsystem: "pipeline",
				Name:      "regional_guides_total",
				Help:      "Regional guides assembled",
			},
		),

		CountriesMissing: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "regions",
				Subsystem: "pipeline",
				Name:      "countries_missing_total",
				Help:      "Requested countries for which no guide was produced",
			},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "regions",
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Wall time of a pipeline run",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
	}
}

func (m *Metrics) register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.QueriesTotal,
		m.QueryDuration,
		m.GuidesDiscovered,
		m.GuidesDropped,
		m.GroupsSkipped,
		m.GuidesGenerated,
		m.CountriesMissing,
		m.RunDuration,
	)
}

// RecordQuery records a graph query outcome and its duration
func (m *Metrics) RecordQuery(outcome string, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(duration.Seconds())
}

// RecordDropped increments the dropped guide counter for a stage
func (m *Metrics) RecordDropped(stage string) {
	m.GuidesDropped.WithLabelValues(stage).Inc()
}

// RecordSkipped increments the skipped group counter for a reason
func (m *Metrics) RecordSkipped(reason string) {
	m.GroupsSkipped.WithLabelValues(reason).Inc()
}
