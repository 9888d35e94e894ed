package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jopela/regions/country"
	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/guide"
	"github.com/jopela/regions/metric"
	"github.com/jopela/regions/resolver"
)

// DefaultWorkers bounds concurrent resolutions when no option is given.
const DefaultWorkers = 4

// Reasons attached to dropped guides and skipped groups.
const (
	ReasonNoBinding    = "no_binding"
	ReasonQueryFailed  = "query_failed"
	ReasonInvalid      = "invalid"
	ReasonNotRequested = "not_requested"
)

// Resolver is the subset of resolver.Resolver the pipeline walks guides
// through.
type Resolver interface {
	CityResource(ctx context.Context, search string) (resolver.Resource, error)
	CountryOf(ctx context.Context, res resolver.Resource) (resolver.Resource, error)
	Alpha3Of(ctx context.Context, country resolver.Resource) (string, error)
}

// Orchestrator drives one batch run from discovery to assembled regional
// guides.
type Orchestrator struct {
	resolver  Resolver
	discovery guide.Discovery
	builder   *guide.Builder
	countries *country.Table
	metrics   *metric.Metrics
	logger    *slog.Logger
	workers   int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers bounds how many guides are resolved concurrently. One
// reproduces a fully sequential run.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger run events are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics enables run metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an Orchestrator.
func New(res Resolver, discovery guide.Discovery, builder *guide.Builder, countries *country.Table, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver:  res,
		discovery: discovery,
		builder:   builder,
		countries: countries,
		logger:    slog.Default(),
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// resolution carries one guide through the city and country stages. A
// zero country means the guide was dropped.
type resolution struct {
	file    guide.File
	city    resolver.Resource
	country resolver.Resource
}

// Run executes the batch for the requested alpha-3 codes.
//
// It fails with a fatal error wrapping errors.ErrNoCountries when no
// requested code is valid, and errors.ErrNoGuides when discovery yields
// nothing; in both cases no graph query is issued. Every other failure is
// logged and excludes only the guide or group it concerns. The returned
// guides are ordered by first appearance of their country in discovery
// order.
func (o *Orchestrator) Run(ctx context.Context, requested []string) ([]guide.Regional, Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	logger := o.logger.With("run_id", report.RunID)

	codes, err := o.countries.Select(requested, logger)
	if err != nil {
		return nil, report, err
	}
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c.Alpha3] = true
		report.Requested = append(report.Requested, c.Alpha3)
	}

	files, err := o.discovery.List(ctx)
	if err != nil {
		logger.Error("Guide discovery failed", "error", err)
		return nil, report, errors.WrapFatal(errors.ErrNoGuides, "pipeline", "Run", "guide discovery")
	}
	if len(files) == 0 {
		return nil, report, errors.WrapFatal(errors.ErrNoGuides, "pipeline", "Run", "guide discovery")
	}
	report.Guides = len(files)
	if o.metrics != nil {
		o.metrics.GuidesDiscovered.Add(float64(len(files)))
	}
	logger.Info("Starting run", "guides", len(files), "countries", len(codes), "workers", o.workers)

	items := make([]resolution, len(files))
	for i, f := range files {
		items[i].file = f
	}

	o.forEach(ctx, len(items), func(ctx context.Context, i int) {
		items[i].city = o.resolveCity(ctx, logger, items[i].file)
	})
	o.forEach(ctx, len(items), func(ctx context.Context, i int) {
		if items[i].city.IsZero() {
			return
		}
		items[i].country = o.resolveCountry(ctx, logger, items[i])
	})
	if err := ctx.Err(); err != nil {
		return nil, report, errors.Wrap(err, "pipeline", "Run", "guide resolution")
	}

	pairs := make([]Pair, 0, len(items))
	for _, it := range items {
		if it.country.IsZero() {
			report.Dropped++
			continue
		}
		pairs = append(pairs, Pair{File: it.file, Country: it.country})
	}

	groups := Regroup(pairs)
	byCode, order := o.matchCodes(ctx, logger, groups, wanted, &report)

	guides := make([]guide.Regional, 0, len(order))
	generated := make(map[string]bool, len(order))
	for _, alpha3 := range order {
		g := byCode[alpha3]
		regional, err := o.builder.Build(ctx, g.Key, alpha3, g.Members)
		if err != nil {
			logger.Error("Cannot assemble regional guide", "alpha3", alpha3, "error", err)
			report.Skipped++
			o.recordSkipped(ReasonInvalid)
			continue
		}
		guides = append(guides, regional)
		generated[alpha3] = true
		report.Generated = append(report.Generated, alpha3)
		if o.metrics != nil {
			o.metrics.GuidesGenerated.Inc()
		}
	}

	for _, alpha3 := range report.Requested {
		if generated[alpha3] {
			continue
		}
		logger.Error("Could not generate a guide for this country", "alpha3", alpha3)
		report.Missing = append(report.Missing, alpha3)
	}
	if o.metrics != nil {
		o.metrics.CountriesMissing.Add(float64(len(report.Missing)))
	}

	report.Duration = time.Since(start)
	if o.metrics != nil {
		o.metrics.RunDuration.Observe(report.Duration.Seconds())
	}
	logger.Info("Run complete", "report", report)
	return guides, report, nil
}

// matchCodes resolves the alpha-3 of every group and keeps the requested
// ones. Groups whose resources share a code are merged in group order.
func (o *Orchestrator) matchCodes(ctx context.Context, logger *slog.Logger, groups []Group,
	wanted map[string]bool, report *Report) (map[string]*Group, []string) {

	byCode := make(map[string]*Group)
	var order []string
	for _, g := range groups {
		alpha3, err := o.resolver.Alpha3Of(ctx, g.Key)
		if err != nil {
			logger.Error("Cannot determine country code for this resource",
				"resource", g.Key.URI(), "guides", len(g.Members), "reason", reasonOf(err), "error", err)
			report.Skipped++
			o.recordSkipped(reasonOf(err))
			continue
		}
		if !wanted[alpha3] {
			logger.Info("Country not required for this batch",
				"alpha3", alpha3, "resource", g.Key.URI(), "guides", len(g.Members))
			report.Skipped++
			o.recordSkipped(ReasonNotRequested)
			continue
		}

		if existing, ok := byCode[alpha3]; ok {
			logger.Warn("Merging guides of resources sharing a country code",
				"alpha3", alpha3, "resource", g.Key.URI(), "kept", existing.Key.URI())
			existing.Members = append(existing.Members, g.Members...)
			continue
		}
		merged := Group{Key: g.Key, Members: append([]guide.File(nil), g.Members...)}
		byCode[alpha3] = &merged
		order = append(order, alpha3)
	}
	return byCode, order
}

func (o *Orchestrator) resolveCity(ctx context.Context, logger *slog.Logger, file guide.File) resolver.Resource {
	search, err := o.discovery.SearchString(ctx, file)
	if err != nil {
		o.drop(logger, metric.StageSearch, file, "Cannot read guide search string", err)
		return resolver.Resource{}
	}
	city, err := o.resolver.CityResource(ctx, search)
	if err != nil {
		o.drop(logger, metric.StageCity, file, "Cannot resolve city resource", err, "search", search)
		return resolver.Resource{}
	}
	return city
}

func (o *Orchestrator) resolveCountry(ctx context.Context, logger *slog.Logger, it resolution) resolver.Resource {
	res, err := o.resolver.CountryOf(ctx, it.city)
	if err != nil {
		o.drop(logger, metric.StageCountry, it.file, "Cannot resolve country resource", err, "resource", it.city.URI())
		return resolver.Resource{}
	}
	return res
}

func (o *Orchestrator) drop(logger *slog.Logger, stage string, file guide.File, msg string, err error, attrs ...any) {
	args := append([]any{"guide", file.Path, "stage", stage, "reason", reasonOf(err), "error", err}, attrs...)
	logger.Error(msg, args...)
	if o.metrics != nil {
		o.metrics.RecordDropped(stage)
	}
}

func (o *Orchestrator) recordSkipped(reason string) {
	if o.metrics != nil {
		o.metrics.RecordSkipped(reason)
	}
}

// forEach runs fn for indexes [0, n) on at most o.workers goroutines. It
// stops scheduling once ctx is done.
func (o *Orchestrator) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// reasonOf tells a graph miss apart from a failed query in logs.
func reasonOf(err error) string {
	switch {
	case errors.IsNoBinding(err):
		return ReasonNoBinding
	case errors.IsInvalid(err):
		return ReasonInvalid
	default:
		return ReasonQueryFailed
	}
}
