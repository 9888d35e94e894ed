package cache

import (
	"github.com/jopela/regions/metric"
)

// Option configures a cache.
type Option[V any] func(*cacheOptions)

type cacheOptions struct {
	registry  *metric.MetricsRegistry
	component string
}

// WithMetrics exports the cache statistics to registry, labelled with
// component. A nil registry or empty component leaves export disabled.
func WithMetrics[V any](registry *metric.MetricsRegistry, component string) Option[V] {
	return func(opts *cacheOptions) {
		if registry != nil && component != "" {
			opts.registry = registry
			opts.component = component
		}
	}
}

func applyOptions[V any](options ...Option[V]) cacheOptions {
	var opts cacheOptions
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	return opts
}
