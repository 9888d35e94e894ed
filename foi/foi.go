package foi

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/jopela/regions/errors"
)

// Facility is one facility of interest in a country.
type Facility struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Kind string  `json:"kind,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Source supplies the facilities of a country. Fetch fails closed: any
// error yields an empty slice, never a propagated failure.
type Source interface {
	Fetch(ctx context.Context, alpha3 string) []Facility
}

// NopSource returns no facilities.
type NopSource struct{}

// Fetch implements Source.
func (NopSource) Fetch(context.Context, string) []Facility {
	return []Facility{}
}

const (
	defaultDriver = "pgx"

	// DefaultQuery selects facilities by ISO alpha-3 code. Columns must be
	// id, name, kind, latitude, longitude in that order.
	DefaultQuery = `SELECT id::text, name, kind, ST_Y(geom), ST_X(geom)
FROM foi
WHERE country_iso = $1
ORDER BY id`

	defaultTimeout = 30 * time.Second
)

// DSN composes a Postgres connection URL from discrete settings.
func DSN(host, user, password, database string) string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     host,
		Path:     "/" + database,
		RawQuery: "sslmode=disable",
	}
	if user != "" {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}

// PostgresConfig configures a PostgresSource.
type PostgresConfig struct {
	// Driver is the database/sql driver name (default: "pgx").
	Driver string

	// DSN is the connection string.
	DSN string

	// Query selects facilities with the alpha-3 code bound to $1
	// (default: DefaultQuery).
	Query string

	// Timeout bounds each fetch (default: 30s).
	Timeout time.Duration

	// Logger for fetch failures (optional, defaults to slog.Default()).
	Logger *slog.Logger
}

// PostgresSource reads facilities from the FOI schema.
type PostgresSource struct {
	db      *sql.DB
	query   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ Source = (*PostgresSource)(nil)

// NewPostgresSource opens the database. Connections are established lazily,
// so an unreachable server surfaces on the first Fetch, not here.
func NewPostgresSource(cfg PostgresConfig) (*PostgresSource, error) {
	if cfg.DSN == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "foi", "NewPostgresSource", "dsn check")
	}
	driver := cfg.Driver
	if driver == "" {
		driver = defaultDriver
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, errors.WrapInvalid(err, "foi", "NewPostgresSource", "open database")
	}

	query := cfg.Query
	if query == "" {
		query = DefaultQuery
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSource{db: db, query: query, timeout: timeout, logger: logger}, nil
}

// Fetch implements Source.
func (s *PostgresSource) Fetch(ctx context.Context, alpha3 string) []Facility {
	facilities, err := s.fetch(ctx, alpha3)
	if err != nil {
		s.logger.Error("Cannot fetch facilities, continuing without them",
			"alpha3", alpha3, "error", err)
		return []Facility{}
	}
	return facilities
}

func (s *PostgresSource) fetch(ctx context.Context, alpha3 string) ([]Facility, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.query, alpha3)
	if err != nil {
		return nil, errors.WrapTransient(err, "foi", "Fetch", "query facilities")
	}
	defer rows.Close()

	facilities := []Facility{}
	for rows.Next() {
		var f Facility
		var kind sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &kind, &f.Lat, &f.Lon); err != nil {
			return nil, errors.WrapInvalid(err, "foi", "Fetch", "scan facility")
		}
		f.Kind = kind.String
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "foi", "Fetch", "iterate facilities")
	}
	return facilities, nil
}

// Close closes the database handle.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
