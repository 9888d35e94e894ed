// Package cache provides generic, thread-safe caches for resolver results.
//
// Two implementations are available:
//   - Simple: no eviction policy
//   - Noop: stores nothing, every Get is a miss (caching disabled)
//
// Graph lookups are referentially transparent for a fixed endpoint, so the
// resolver never needs eviction; the Simple cache holds entries for the life
// of the process. Statistics are always collected and can additionally be
// exported as Prometheus metrics:
//
//	c, err := cache.NewSimple[string](
//	    cache.WithMetrics[string](registry, "memo"),
//	)
//
// The cache only stores completed values. Coordinating concurrent callers
// for the same key is the job of package memo.
package cache
