package sparql

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/metric"
)

// DefaultEndpoint is the public DBpedia SPARQL endpoint.
const DefaultEndpoint = "http://dbpedia.org/sparql"

// Query outcomes recorded in the queries_total metric.
const (
	OutcomeRows  = "rows"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// maxResponseBytes bounds the size of a decoded result document.
const maxResponseBytes = 8 << 20

// Gateway issues SELECT queries against one endpoint.
type Gateway interface {
	// Select runs query and returns its solutions. Zero rows is not an error.
	Select(ctx context.Context, query string) ([]Row, error)

	// Endpoint returns the address queries are sent to.
	Endpoint() string
}

// Config configures a Client.
type Config struct {
	// Endpoint is the SPARQL endpoint URL (default: DefaultEndpoint).
	Endpoint string

	// Timeout bounds each query (default: 30s).
	Timeout time.Duration

	// RateLimit caps queries per second; zero disables limiting.
	RateLimit float64

	// Burst is the limiter burst size (default: 1).
	Burst int

	// Prefixes are declared at the top of every query.
	// Defaults to dbowl: for the DBpedia ontology.
	Prefixes map[string]string

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client

	// Metrics records per query outcome and duration (optional).
	Metrics *metric.Metrics

	// Logger for debug output (optional, defaults to slog.Default()).
	Logger *slog.Logger
}

// DefaultPrefixes returns the prefixes every lookup query relies on.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"dbowl": "http://dbpedia.org/ontology/",
	}
}

// Client is an HTTP SPARQL protocol client.
type Client struct {
	endpoint   string
	timeout    time.Duration
	prologue   string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metric.Metrics
	logger     *slog.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "sparql", "NewClient",
			fmt.Sprintf("endpoint %q is not an absolute URL", endpoint))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	prefixes := cfg.Prefixes
	if prefixes == nil {
		prefixes = DefaultPrefixes()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		prologue:   prologue(prefixes),
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    cfg.Metrics,
		logger:     logger,
	}, nil
}

// Endpoint returns the endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Select runs a SELECT query. A timeout, a non-2xx status or an undecodable
// body is returned as a transient error wrapping ErrQueryFailed. When the
// rate limit cannot admit the query before ctx ends, the error also wraps
// ErrRateLimited.
func (c *Client) Select(ctx context.Context, query string) ([]Row, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(0, fmt.Errorf("%w: %w", errors.ErrRateLimited, err), "rate limit wait")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	rows, err := c.do(ctx, c.prologue+query)
	elapsed := time.Since(start)
	if err != nil {
		return nil, c.fail(elapsed, err, "select")
	}

	outcome := OutcomeRows
	if len(rows) == 0 {
		outcome = OutcomeEmpty
	}
	c.record(outcome, elapsed)
	c.logger.Debug("SPARQL query", "rows", len(rows), "duration", elapsed)

	return rows, nil
}

func (c *Client) do(ctx context.Context, query string) ([]Row, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	rows, err := DecodeResults(body)
	if err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return rows, nil
}

func (c *Client) fail(elapsed time.Duration, cause error, action string) error {
	c.record(OutcomeError, elapsed)
	return errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrQueryFailed, cause), "sparql", "Select", action)
}

func (c *Client) record(outcome string, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordQuery(outcome, elapsed)
	}
}

func prologue(prefixes map[string]string) string {
	names := make([]string, 0, len(prefixes))
	for name := range prefixes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", name, prefixes[name])
	}
	return b.String()
}
