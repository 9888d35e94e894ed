package guide

import (
	"context"
	"log/slog"

	"github.com/jopela/regions/country"
	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/foi"
	"github.com/jopela/regions/resolver"
)

// AdminLevelCountry is the administrative level of a country-wide guide.
const AdminLevelCountry = 2

// Regional is the guide assembled for one requested country. Values are
// built once by a Builder and must not be modified afterwards.
type Regional struct {
	Code       country.Code      `json:"code"`
	Resource   resolver.Resource `json:"resource"`
	AdminLevel int               `json:"admin_level"`
	Guides     []File            `json:"guides"`
	Facilities []foi.Facility    `json:"facilities"`
}

// Builder assembles regional guides.
type Builder struct {
	countries *country.Table
	foi       foi.Source
	logger    *slog.Logger
}

// NewBuilder creates a Builder. A nil source attaches no facilities.
func NewBuilder(countries *country.Table, source foi.Source, logger *slog.Logger) *Builder {
	if source == nil {
		source = foi.NopSource{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{countries: countries, foi: source, logger: logger}
}

// Build assembles the guide of the country with code alpha3 from its member
// guides. The display name comes from the country table; facilities from
// the FOI source.
func (b *Builder) Build(ctx context.Context, resource resolver.Resource, alpha3 string, members []File) (Regional, error) {
	code, ok := b.countries.Lookup(alpha3)
	if !ok {
		return Regional{}, errors.WrapInvalid(errors.ErrUnknownCountry, "guide", "Build", "name lookup "+alpha3)
	}

	facilities := b.foi.Fetch(ctx, code.Alpha3)
	if facilities == nil {
		facilities = []foi.Facility{}
	}

	guides := make([]File, len(members))
	copy(guides, members)

	b.logger.Debug("Assembled regional guide",
		"alpha3", code.Alpha3, "guides", len(guides), "facilities", len(facilities))

	return Regional{
		Code:       code,
		Resource:   resource,
		AdminLevel: AdminLevelCountry,
		Guides:     guides,
		Facilities: facilities,
	}, nil
}
