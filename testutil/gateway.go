package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/sparql"
	"github.com/jopela/regions/vocabulary"
)

// MockEndpoint is the endpoint reported by MockGateway.
const MockEndpoint = "http://graph.test/sparql"

type gatewayRule struct {
	fragment string
	values   []string
	err      error
}

// MockGateway is an in-memory sparql.Gateway. Each query is answered by the
// first rule whose fragment occurs in the query text; a query matching no
// rule returns zero rows. Every call is recorded.
// Thread-safe for concurrent use from multiple goroutines.
type MockGateway struct {
	mu       sync.Mutex
	endpoint string
	rules    []gatewayRule
	queries  []string
	delay    time.Duration
}

var _ sparql.Gateway = (*MockGateway)(nil)

// NewMockGateway creates an empty mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{endpoint: MockEndpoint}
}

// Endpoint implements sparql.Gateway.
func (g *MockGateway) Endpoint() string {
	return g.endpoint
}

// Answer registers one single-column row per value for queries containing
// fragment. Values that are IRIs are returned as uri terms, others as
// literals.
func (g *MockGateway) Answer(fragment string, values ...string) *MockGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, gatewayRule{fragment: fragment, values: values})
	return g
}

// Fail makes queries containing fragment return err.
func (g *MockGateway) Fail(fragment string, err error) *MockGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, gatewayRule{fragment: fragment, err: err})
	return g
}

// SetDelay makes every query take at least d, or until its context ends.
func (g *MockGateway) SetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delay = d
}

// City answers the label lookup for search with cityIRI.
func (g *MockGateway) City(search, cityIRI string) *MockGateway {
	return g.Answer(vocabulary.Literal(search, "en"), cityIRI)
}

// Country answers "country of resourceIRI" with countryIRI.
func (g *MockGateway) Country(resourceIRI, countryIRI string) *MockGateway {
	return g.Answer("<"+resourceIRI+"> dbowl:country", countryIRI)
}

// Alpha3 answers "alpha-3 of countryIRI" with code.
func (g *MockGateway) Alpha3(countryIRI, code string) *MockGateway {
	return g.Answer("#sameAs> <"+countryIRI+">", code)
}

// CountryOfAlpha3 answers "country resource of code" with countryIRI.
func (g *MockGateway) CountryOfAlpha3(code, countryIRI string) *MockGateway {
	return g.Answer("#iso> "+vocabulary.Literal(code, ""), countryIRI)
}

// Select implements sparql.Gateway.
func (g *MockGateway) Select(ctx context.Context, query string) ([]sparql.Row, error) {
	g.mu.Lock()
	g.queries = append(g.queries, query)
	delay := g.delay
	var matched *gatewayRule
	for i := range g.rules {
		if strings.Contains(query, g.rules[i].fragment) {
			r := g.rules[i]
			matched = &r
			break
		}
	}
	g.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, TransportError(ctx.Err())
		case <-timer.C:
		}
	}

	if matched == nil {
		return []sparql.Row{}, nil
	}
	if matched.err != nil {
		return nil, matched.err
	}

	rows := make([]sparql.Row, 0, len(matched.values))
	for _, v := range matched.values {
		term := sparql.Term{Type: sparql.TermLiteral, Value: v}
		if vocabulary.IsIRI(v) {
			term.Type = sparql.TermURI
		}
		rows = append(rows, sparql.NewRow([]string{"x"}, map[string]sparql.Term{"x": term}))
	}
	return rows, nil
}

// Calls returns the number of queries issued.
func (g *MockGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queries)
}

// CallsMatching returns the number of queries containing fragment.
func (g *MockGateway) CallsMatching(fragment string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, q := range g.queries {
		if strings.Contains(q, fragment) {
			n++
		}
	}
	return n
}

// Queries returns a copy of every query issued, in call order.
func (g *MockGateway) Queries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.queries))
	copy(out, g.queries)
	return out
}

// TransportError builds an error shaped like a failed query from
// sparql.Client.
func TransportError(cause error) error {
	if cause == nil {
		cause = fmt.Errorf("connection refused")
	}
	return errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrQueryFailed, cause), "sparql", "Select", "select")
}
