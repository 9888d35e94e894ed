package cache

import (
	"sync"

	"github.com/jopela/regions/errors"
)

// simpleCache never evicts. Graph answers do not change within a run, so
// entries stay until the process exits.
type simpleCache[V any] struct {
	mu      sync.RWMutex
	items   map[string]V
	stats   *Statistics
	metrics *cacheMetrics
}

func newSimpleCache[V any](opts cacheOptions) (*simpleCache[V], error) {
	c := &simpleCache[V]{
		items: make(map[string]V),
		stats: NewStatistics(),
	}
	if opts.registry != nil {
		m, err := newCacheMetrics(opts.registry, opts.component)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewSimple", "metrics registration")
		}
		c.metrics = m
	}
	return c, nil
}

func (c *simpleCache[V]) Get(key string) (V, bool) {
	value, ok := c.Peek(key)
	c.stats.lookup(ok)
	if c.metrics != nil {
		c.metrics.lookup(ok)
	}
	return value, ok
}

func (c *simpleCache[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.items[key]
	return value, ok
}

func (c *simpleCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	_, existed := c.items[key]
	c.items[key] = value
	size := len(c.items)
	c.mu.Unlock()

	c.stats.set(size)
	if c.metrics != nil {
		c.metrics.set(size)
	}
	return !existed, nil
}

func (c *simpleCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *simpleCache[V]) Stats() *Statistics {
	return c.stats
}

func (c *simpleCache[V]) Close() error {
	return nil
}
