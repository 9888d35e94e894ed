// Package metric provides Prometheus metrics for regional guide runs.
//
// A MetricsRegistry owns a private Prometheus registry. It carries the core
// run metrics (graph query outcomes, guides discovered and dropped, guides
// generated, countries missing) and lets components such as the memo cache
// register their own collectors under a component prefix. Duplicate
// registrations are rejected with an invalid-class error.
//
// Runs are short-lived batches, so metrics are not served over HTTP. When a
// Pushgateway URL is configured, the command pushes the registry once at the
// end of the run:
//
//	registry := metric.NewMetricsRegistry()
//	// ... run the pipeline ...
//	if err := registry.Push(ctx, cfg.Metrics.Pushgateway, cfg.Metrics.Job); err != nil {
//	    logger.Warn("metrics push failed", "error", err)
//	}
package metric
