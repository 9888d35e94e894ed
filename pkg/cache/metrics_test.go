package cache

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopela/regions/metric"
)

func TestCacheMetricsIntegration(t *testing.T) {
	metricsRegistry := metric.NewMetricsRegistry()

	cache, err := NewSimple[string](WithMetrics[string](metricsRegistry, "test_cache"))
	require.NoError(t, err)

	_, _ = cache.Set("key1", "value1")
	_, _ = cache.Set("key2", "value2")

	val, found := cache.Get("key1")
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	_, found = cache.Get("key3")
	assert.False(t, found)

	_, found = cache.Peek("key2")
	assert.True(t, found)

	metricFamilies, err := metricsRegistry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	metricsByName := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		metricsByName[mf.GetName()] = mf
	}

	hitsMetric := metricsByName["regions_cache_hits_total"]
	require.NotNil(t, hitsMetric, "hits metric should exist")
	assert.Equal(t, float64(1), hitsMetric.Metric[0].GetCounter().GetValue())

	missesMetric := metricsByName["regions_cache_misses_total"]
	require.NotNil(t, missesMetric, "misses metric should exist")
	assert.Equal(t, float64(1), missesMetric.Metric[0].GetCounter().GetValue())

	setsMetric := metricsByName["regions_cache_sets_total"]
	require.NotNil(t, setsMetric, "sets metric should exist")
	assert.Equal(t, float64(2), setsMetric.Metric[0].GetCounter().GetValue())

	sizeMetric := metricsByName["regions_cache_size"]
	require.NotNil(t, sizeMetric, "size metric should exist")
	assert.Equal(t, float64(2), sizeMetric.Metric[0].GetGauge().GetValue())

	assert.Equal(t, "component", hitsMetric.Metric[0].Label[0].GetName())
	assert.Equal(t, "test_cache", hitsMetric.Metric[0].Label[0].GetValue())
}

func TestCacheWithoutMetrics(t *testing.T) {
	cache, err := NewSimple[string](WithMetrics[string](nil, "ignored"))
	require.NoError(t, err)

	_, _ = cache.Set("key1", "value1")
	cache.Get("key1")

	stats := cache.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Hits())
}

func TestCacheMetricsDuplicatePrefix(t *testing.T) {
	metricsRegistry := metric.NewMetricsRegistry()

	_, err := NewSimple[string](WithMetrics[string](metricsRegistry, "dup"))
	require.NoError(t, err)

	_, err = NewSimple[string](WithMetrics[string](metricsRegistry, "dup"))
	assert.Error(t, err)
}
