package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jopela/regions/config"
	"github.com/jopela/regions/country"
	"github.com/jopela/regions/foi"
	"github.com/jopela/regions/guide"
	"github.com/jopela/regions/metric"
	"github.com/jopela/regions/output"
	"github.com/jopela/regions/pipeline"
	"github.com/jopela/regions/pkg/cache"
	"github.com/jopela/regions/pkg/memo"
	"github.com/jopela/regions/resolver"
	"github.com/jopela/regions/sparql"
)

// app holds the collaborators of one run.
type app struct {
	logger       *slog.Logger
	countries    *country.Table
	resolver     *resolver.Resolver
	orchestrator *pipeline.Orchestrator
	sink         output.Sink
	closers      []func() error
}

func newApp(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger, countries: country.ISO()}

	gateway, err := sparql.NewClient(sparql.Config{
		Endpoint:  cfg.SPARQL.Endpoint,
		Timeout:   cfg.SPARQL.Timeout,
		RateLimit: cfg.SPARQL.RateLimit,
		Burst:     cfg.SPARQL.Burst,
		Prefixes:  cfg.SPARQL.Prefixes,
		Metrics:   registry.CoreMetrics(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create sparql client: %w", err)
	}

	m, err := a.setupMemo(ctx, cfg, registry)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.resolver = resolver.New(gateway, m)

	var source foi.Source = foi.NopSource{}
	if cfg.FOI.Enabled() {
		dsn := cfg.FOI.DSN
		if dsn == "" {
			dsn = foi.DSN(cfg.FOI.Host, cfg.FOI.User, cfg.FOI.Password, cfg.FOI.Database)
		}
		pg, err := foi.NewPostgresSource(foi.PostgresConfig{
			DSN:     dsn,
			Query:   cfg.FOI.Query,
			Timeout: cfg.FOI.Timeout,
			Logger:  logger,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create FOI source: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		source = pg
	}

	discovery := guide.FSDiscovery{
		Root:        cfg.Guides.Root,
		Filename:    cfg.Guides.Filename,
		SearchField: cfg.Guides.SearchField,
		Logger:      logger,
	}
	builder := guide.NewBuilder(a.countries, source, logger)
	a.orchestrator = pipeline.New(a.resolver, discovery, builder, a.countries,
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(registry.CoreMetrics()),
	)

	var sinks output.Multi
	if cfg.Output.Target != "" {
		sinks = append(sinks, output.NewFileSink(cfg.Output.Target, logger))
	}
	if o := cfg.Output.Object; o != nil {
		objectSink, err := output.NewObjectSink(output.ObjectConfig{
			Endpoint:  o.Endpoint,
			AccessKey: o.AccessKey,
			SecretKey: o.SecretKey,
			UseSSL:    o.UseSSL,
			Region:    o.Region,
			Bucket:    o.Bucket,
			Prefix:    o.Prefix,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create object sink: %w", err)
		}
		sinks = append(sinks, objectSink)
	}
	a.sink = sinks

	return a, nil
}

// setupMemo builds the lookup memo and warms it from the persistent store.
func (a *app) setupMemo(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry) (*memo.Memo[resolver.Binding], error) {
	c, err := cache.NewFromConfig[resolver.Binding](cfg.Cache,
		cache.WithMetrics[resolver.Binding](registry, "resolver"))
	if err != nil {
		return nil, fmt.Errorf("create memo cache: %w", err)
	}
	a.closers = append(a.closers, c.Close)

	var store memo.Store
	switch cfg.Memo.Store {
	case config.MemoStoreSQLite:
		s, err := memo.OpenSQLite(cfg.Memo.Path)
		if err != nil {
			return nil, fmt.Errorf("open memo store: %w", err)
		}
		store = s
	case config.MemoStoreNATS:
		s, err := memo.NewNATSStore(ctx, cfg.Memo.URL, cfg.Memo.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open memo store: %w", err)
		}
		store = s
	}

	m := memo.New[resolver.Binding](c,
		memo.WithStore[resolver.Binding](store),
		memo.WithLogger[resolver.Binding](a.logger))
	a.closers = append(a.closers, m.Close)

	if store != nil {
		n, err := m.Warm(ctx)
		if err != nil {
			a.logger.Warn("Cannot warm lookup memo, starting cold", "store", cfg.Memo.Store, "error", err)
		} else {
			a.logger.Info("Lookup memo warmed", "store", cfg.Memo.Store, "entries", n)
		}
	}
	return m, nil
}

// Close releases every collaborator in reverse creation order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Cannot release resource", "error", err)
		}
	}
	a.closers = nil
}

// printCountries writes every code of the table with its name.
func printCountries(w io.Writer, table *country.Table) error {
	for _, c := range table.All() {
		if _, err := fmt.Fprintf(w, "%s : %s\n", c.Alpha3, c.Name); err != nil {
			return err
		}
	}
	return nil
}

// printResources writes the graph resource of every code of the table.
// Codes without a resource are logged and printed with an empty resource.
func printResources(ctx context.Context, w io.Writer, res *resolver.Resolver, table *country.Table, logger *slog.Logger) error {
	for _, c := range table.All() {
		r, err := res.CountryResourceOf(ctx, c.Alpha3)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Cannot resolve country resource", "alpha3", c.Alpha3, "error", err)
		}
		if _, err := fmt.Fprintf(w, "%s : %s : %s\n", c.Alpha3, c.Name, r.URI()); err != nil {
			return err
		}
	}
	return nil
}
