package cache

import (
	"github.com/jopela/regions/errors"
)

// Cache stores completed values by key. Implementations are safe for
// concurrent use.
type Cache[V any] interface {
	// Get returns the value for key and counts a hit or a miss.
	Get(key string) (V, bool)

	// Peek returns the value for key without touching statistics.
	Peek(key string) (V, bool)

	// Set stores value under key. It reports whether the key was new.
	Set(key string, value V) (bool, error)

	// Size returns the number of entries.
	Size() int

	// Stats returns the cache statistics, nil for caches that keep none.
	Stats() *Statistics

	Close() error
}

// NewSimple creates a cache that keeps every entry until it is closed.
// Statistics are always kept; WithMetrics also exports them.
func NewSimple[V any](options ...Option[V]) (Cache[V], error) {
	return newSimpleCache[V](applyOptions(options...))
}

// NewNoop creates a cache that stores nothing. Every Get is a miss.
func NewNoop[V any]() Cache[V] {
	return noopCache[V]{}
}

type noopCache[V any] struct{}

func (noopCache[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (c noopCache[V]) Peek(key string) (V, bool) { return c.Get(key) }

func (noopCache[V]) Set(string, V) (bool, error) { return false, nil }

func (noopCache[V]) Size() int { return 0 }

func (noopCache[V]) Stats() *Statistics { return nil }

func (noopCache[V]) Close() error { return nil }

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "Set", "empty key")
	}
	return nil
}
