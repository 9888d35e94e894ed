package resolver

import (
	"context"
	"strings"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/pkg/memo"
	"github.com/jopela/regions/sparql"
)

// Memoized operation names. They are part of the persisted memo key, so
// renaming one invalidates stored entries for it.
const (
	OpCity            = "city_resource"
	OpCountry         = "country_of_resource"
	OpAlpha3          = "alpha3_of_country"
	OpCountryOfAlpha3 = "country_of_alpha3"
)

// Binding is the memoized outcome of one lookup. A lookup that found no
// binding is a successful computation and is memoized as Found=false.
type Binding struct {
	Value string `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// Resolver exposes the idempotent graph lookups of the pipeline. Every
// lookup is memoized under (operation, endpoint, argument).
//
// Each lookup returns its value, an error wrapping errors.ErrNoBinding when
// the query matched nothing, or a transient error wrapping
// errors.ErrQueryFailed when the query itself failed. Failures are not
// memoized.
type Resolver struct {
	gateway sparql.Gateway
	memo    *memo.Memo[Binding]
	city    CityLookup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCityLookup replaces the default label-based city lookup.
func WithCityLookup(lookup CityLookup) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.city = lookup
		}
	}
}

// New creates a Resolver. A nil memo disables memoization.
func New(gateway sparql.Gateway, m *memo.Memo[Binding], opts ...Option) *Resolver {
	if m == nil {
		m = memo.New[Binding](nil)
	}
	r := &Resolver{
		gateway: gateway,
		memo:    m,
		city:    LabelLookup{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CityResource resolves a guide's search string to its city resource.
func (r *Resolver) CityResource(ctx context.Context, search string) (Resource, error) {
	v, err := r.lookup(ctx, OpCity, strings.TrimSpace(search), r.city.CityQuery)
	if err != nil {
		return Resource{}, err
	}
	return NewResource(v), nil
}

// CountryOf resolves the country containing res.
func (r *Resolver) CountryOf(ctx context.Context, res Resource) (Resource, error) {
	v, err := r.lookup(ctx, OpCountry, res.URI(), countryQuery)
	if err != nil {
		return Resource{}, err
	}
	return NewResource(v), nil
}

// Alpha3Of resolves the ISO 3166 alpha-3 code of a country resource.
func (r *Resolver) Alpha3Of(ctx context.Context, country Resource) (string, error) {
	v, err := r.lookup(ctx, OpAlpha3, country.URI(), alpha3Query)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(v)), nil
}

// CountryResourceOf resolves the country resource carrying an alpha-3 code.
func (r *Resolver) CountryResourceOf(ctx context.Context, alpha3 string) (Resource, error) {
	code := strings.ToUpper(strings.TrimSpace(alpha3))
	v, err := r.lookup(ctx, OpCountryOfAlpha3, code, countryOfAlpha3Query)
	if err != nil {
		return Resource{}, err
	}
	return NewResource(v), nil
}

// GuideInCountry reports whether the city behind search lies in the country
// identified by alpha3.
func (r *Resolver) GuideInCountry(ctx context.Context, search, alpha3 string) (bool, error) {
	city, err := r.CityResource(ctx, search)
	if err != nil {
		return false, err
	}
	country, err := r.CountryOf(ctx, city)
	if err != nil {
		return false, err
	}
	want, err := r.CountryResourceOf(ctx, alpha3)
	if err != nil {
		return false, err
	}
	return country.Equal(want), nil
}

// Endpoint returns the endpoint lookups are issued against.
func (r *Resolver) Endpoint() string {
	return r.gateway.Endpoint()
}

// Computed reports whether op(arg) already has a memoized result.
func (r *Resolver) Computed(op, arg string) bool {
	return r.memo.Has(memo.NewKey(op, r.gateway.Endpoint(), arg))
}

func (r *Resolver) lookup(ctx context.Context, op, arg string, build func(string) (string, error)) (string, error) {
	query, err := build(arg)
	if err != nil {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "resolver", op, err.Error())
	}

	key := memo.NewKey(op, r.gateway.Endpoint(), arg)
	b, err := r.memo.Do(ctx, key, func(ctx context.Context) (Binding, error) {
		rows, err := r.gateway.Select(ctx, query)
		if err != nil {
			return Binding{}, err
		}
		term, ok := sparql.First(rows)
		if !ok || strings.TrimSpace(term.Value) == "" {
			return Binding{Found: false}, nil
		}
		return Binding{Value: term.Value, Found: true}, nil
	})
	if err != nil {
		return "", err
	}
	if !b.Found {
		return "", errors.Wrap(errors.ErrNoBinding, "resolver", op, "lookup "+arg)
	}
	return b.Value, nil
}
