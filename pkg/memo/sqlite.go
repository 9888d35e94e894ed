package memo

import (
	"context"
	"database/sql"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/jopela/regions/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS memo (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// SQLiteStore persists memo entries in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the memo database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.WrapFatal(err, "SQLiteStore", "OpenSQLite", "open database")
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.WrapFatal(err, "SQLiteStore", "OpenSQLite", "create schema")
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns every persisted entry.
func (s *SQLiteStore) Load(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM memo`)
	if err != nil {
		return nil, errors.WrapTransient(err, "SQLiteStore", "Load", "query entries")
	}
	defer rows.Close()

	entries := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.WrapTransient(err, "SQLiteStore", "Load", "scan entry")
		}
		entries[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "SQLiteStore", "Load", "iterate entries")
	}
	return entries, nil
}

// Save upserts one entry.
func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO memo (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return errors.WrapTransient(err, "SQLiteStore", "Save", "upsert entry")
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
