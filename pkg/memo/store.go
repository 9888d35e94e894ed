package memo

import "context"

// Store persists memoized results across process runs. Values are the JSON
// encoding of the memoized type.
type Store interface {
	// Load returns every persisted entry keyed by Key.String().
	Load(ctx context.Context) (map[string][]byte, error)

	// Save persists one entry, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Close releases the store's resources.
	Close() error
}
