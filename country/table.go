package country

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/biter777/countries"

	"github.com/jopela/regions/errors"
)

// AllToken requests every code of the table. Like codes, it is matched
// after trimming and upper-casing, so "all" and " All " select it too.
const AllToken = "ALL"

// Code is an ISO 3166 alpha-3 code bound to its display name.
type Code struct {
	Alpha3 string `json:"alpha3"`
	Name   string `json:"name"`
}

// Table is an ordered set of country codes with unique alpha-3 values.
type Table struct {
	codes  []Code
	byCode map[string]int
}

// NewTable builds a table from codes. Later duplicates of an alpha-3 value
// are ignored.
func NewTable(codes ...Code) *Table {
	t := &Table{byCode: make(map[string]int, len(codes))}
	for _, c := range codes {
		c.Alpha3 = normalize(c.Alpha3)
		if c.Alpha3 == "" {
			continue
		}
		if _, dup := t.byCode[c.Alpha3]; dup {
			continue
		}
		t.byCode[c.Alpha3] = len(t.codes)
		t.codes = append(t.codes, c)
	}
	return t
}

var (
	isoOnce  sync.Once
	isoTable *Table
)

// ISO returns the ISO 3166-1 table, ordered by alpha-3 code.
func ISO() *Table {
	isoOnce.Do(func() {
		all := countries.All()
		codes := make([]Code, 0, len(all))
		for _, c := range all {
			alpha3 := c.Alpha3()
			if len(alpha3) != 3 || !c.IsValid() {
				continue
			}
			codes = append(codes, Code{Alpha3: alpha3, Name: c.String()})
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i].Alpha3 < codes[j].Alpha3 })
		isoTable = NewTable(codes...)
	})
	return isoTable
}

// Lookup returns the code for alpha3 and whether it is in the table.
func (t *Table) Lookup(alpha3 string) (Code, bool) {
	i, ok := t.byCode[normalize(alpha3)]
	if !ok {
		return Code{}, false
	}
	return t.codes[i], true
}

// Contains reports table membership.
func (t *Table) Contains(alpha3 string) bool {
	_, ok := t.byCode[normalize(alpha3)]
	return ok
}

// All returns every code in table order.
func (t *Table) All() []Code {
	out := make([]Code, len(t.codes))
	copy(out, t.codes)
	return out
}

// Len returns the number of codes.
func (t *Table) Len() int {
	return len(t.codes)
}

// Select turns the caller's requested codes into the requested set.
//
// Codes are trimmed and upper-cased before matching, AllToken included. If
// AllToken is present the whole table is returned regardless of the other entries. Otherwise unknown codes are
// logged at WARN and dropped, and duplicates are collapsed keeping the first
// occurrence. An empty result is a fatal ErrNoCountries.
func (t *Table) Select(requested []string, logger *slog.Logger) ([]Code, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, r := range requested {
		if normalize(r) == AllToken {
			return t.All(), nil
		}
	}

	seen := make(map[string]bool, len(requested))
	selected := make([]Code, 0, len(requested))
	for _, r := range requested {
		code, ok := t.Lookup(r)
		if !ok {
			logger.Warn("Unknown country code will not be processed",
				"alpha3", r, "hint", "use --country-list for valid codes")
			continue
		}
		if seen[code.Alpha3] {
			continue
		}
		seen[code.Alpha3] = true
		selected = append(selected, code)
	}

	if len(selected) == 0 {
		return nil, errors.WrapFatal(errors.ErrNoCountries, "country", "Select", "country code validation")
	}
	return selected, nil
}

func normalize(alpha3 string) string {
	return strings.ToUpper(strings.TrimSpace(alpha3))
}
