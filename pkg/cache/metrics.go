package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jopela/regions/metric"
)

// cacheMetrics mirrors Statistics as Prometheus series labelled by component.
type cacheMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	sets   prometheus.Counter
	size   prometheus.Gauge
}

func newCacheMetrics(registry *metric.MetricsRegistry, component string) (*cacheMetrics, error) {
	labels := prometheus.Labels{"component": component}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "regions",
			Subsystem:   "cache",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	m := &cacheMetrics{
		hits:   counter("hits_total", "Lookups answered from the cache"),
		misses: counter("misses_total", "Lookups not found in the cache"),
		sets:   counter("sets_total", "Values stored in the cache"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "regions",
			Subsystem:   "cache",
			Name:        "size",
			Help:        "Entries held by the cache",
			ConstLabels: labels,
		}),
	}

	for name, c := range map[string]prometheus.Counter{
		"cache_hits":   m.hits,
		"cache_misses": m.misses,
		"cache_sets":   m.sets,
	} {
		if err := registry.RegisterCounter(component, name, c); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGauge(component, "cache_size", m.size); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *cacheMetrics) lookup(hit bool) {
	if hit {
		m.hits.Inc()
	} else {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) set(size int) {
	m.sets.Inc()
	m.size.Set(float64(size))
}
