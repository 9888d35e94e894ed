package memo

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/pkg/cache"
)

// Key identifies one memoized call: an operation name plus its arguments.
type Key struct {
	Op   string
	Args []string
}

// NewKey builds a Key from an operation name and its arguments.
func NewKey(op string, args ...string) Key {
	return Key{Op: op, Args: args}
}

// String renders the key unambiguously; arguments are quoted so a separator
// inside an argument cannot collide with another key.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Op)
	b.WriteByte('(')
	for i, arg := range k.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(arg))
	}
	b.WriteByte(')')
	return b.String()
}

// Func computes the value for a key.
type Func[V any] func(ctx context.Context) (V, error)

// Memo memoizes completed computations by Key.
//
// Concurrent calls for the same key share one in-flight computation. Only
// computations that return a nil error are stored; a failed computation is
// returned to every waiter and the next call tries again.
type Memo[V any] struct {
	cache  cache.Cache[V]
	group  singleflight.Group
	store  Store
	logger *slog.Logger
}

// Option configures a Memo.
type Option[V any] func(*Memo[V])

// WithStore writes every stored result through to a persistent store.
func WithStore[V any](store Store) Option[V] {
	return func(m *Memo[V]) {
		m.store = store
	}
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(m *Memo[V]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Memo backed by c. A nil cache disables memoization.
func New[V any](c cache.Cache[V], opts ...Option[V]) *Memo[V] {
	if c == nil {
		c = cache.NewNoop[V]()
	}
	m := &Memo[V]{
		cache:  c,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Do returns the memoized value for key, computing it with fn on first use.
//
// The computation runs detached from the caller's cancellation so that a
// waiter giving up does not fail the call for the others; each caller still
// returns as soon as its own ctx is done.
func (m *Memo[V]) Do(ctx context.Context, key Key, fn Func[V]) (V, error) {
	k := key.String()
	if v, ok := m.cache.Get(k); ok {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(k, func() (any, error) {
		if v, ok := m.cache.Peek(k); ok {
			return v, nil
		}
		v, err := fn(detached)
		if err != nil {
			return v, err
		}
		if _, err := m.cache.Set(k, v); err != nil {
			return v, err
		}
		m.persist(detached, k, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Has reports whether key has a stored result, without computing it. It
// does not count as a cache lookup.
func (m *Memo[V]) Has(key Key) bool {
	_, ok := m.cache.Peek(key.String())
	return ok
}

// Stats returns the statistics of the backing cache, nil if it keeps none.
func (m *Memo[V]) Stats() *cache.Statistics {
	return m.cache.Stats()
}

// Warm loads every entry of the configured store into the cache and returns
// how many were loaded. Entries that fail to decode are skipped.
func (m *Memo[V]) Warm(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}

	entries, err := m.store.Load(ctx)
	if err != nil {
		return 0, errors.WrapTransient(err, "memo", "Warm", "store load")
	}

	loaded := 0
	for k, raw := range entries {
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			m.logger.Warn("Skipping undecodable memo entry", "key", k, "error", err)
			continue
		}
		if _, err := m.cache.Set(k, v); err != nil {
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Close closes the persistent store, if any.
func (m *Memo[V]) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

func (m *Memo[V]) persist(ctx context.Context, k string, v V) {
	if m.store == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		m.logger.Warn("Cannot encode memo entry", "key", k, "error", err)
		return
	}
	if err := m.store.Save(ctx, k, raw); err != nil {
		m.logger.Warn("Cannot persist memo entry", "key", k, "error", err)
	}
}
