package memo

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/jopela/regions/errors"
)

// NATSStore persists memo entries in a JetStream key-value bucket so several
// runs, possibly on different hosts, share one memo.
//
// KV keys only allow a restricted alphabet, so memo keys are stored
// base64url-encoded.
type NATSStore struct {
	conn   *nats.Conn
	kv     jetstream.KeyValue
	ownsNC bool
}

// NewNATSStore connects to url and opens (creating if needed) bucket.
func NewNATSStore(ctx context.Context, url, bucket string) (*NATSStore, error) {
	nc, err := nats.Connect(url,
		nats.Name("regions-memo"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSStore", "NewNATSStore", "connect")
	}

	store, err := NewNATSStoreWithConn(ctx, nc, bucket)
	if err != nil {
		nc.Close()
		return nil, err
	}
	store.ownsNC = true
	return store, nil
}

// NewNATSStoreWithConn opens bucket over an existing connection. The caller
// keeps ownership of nc.
func NewNATSStoreWithConn(ctx context.Context, nc *nats.Conn, bucket string) (*NATSStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSStore", "NewNATSStoreWithConn", "jetstream context")
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "regions resolver memo",
		History:     1,
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSStore", "NewNATSStoreWithConn", "open bucket")
	}

	return &NATSStore{conn: nc, kv: kv}, nil
}

// Load returns every entry in the bucket.
func (s *NATSStore) Load(ctx context.Context) (map[string][]byte, error) {
	entries := make(map[string][]byte)

	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrNoKeysFound) {
			return entries, nil
		}
		return nil, errors.WrapTransient(err, "NATSStore", "Load", "list keys")
	}
	defer lister.Stop()

	for encoded := range lister.Keys() {
		raw, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		entry, err := s.kv.Get(ctx, encoded)
		if err != nil {
			if stderrors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return nil, errors.WrapTransient(err, "NATSStore", "Load", "get entry")
		}
		entries[string(raw)] = entry.Value()
	}
	return entries, nil
}

// Save puts one entry, replacing any previous revision.
func (s *NATSStore) Save(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, base64.RawURLEncoding.EncodeToString([]byte(key)), value); err != nil {
		return errors.WrapTransient(err, "NATSStore", "Save", "put entry")
	}
	return nil
}

// Close drains the connection when the store opened it.
func (s *NATSStore) Close() error {
	if s.ownsNC && s.conn != nil {
		return s.conn.Drain()
	}
	return nil
}
