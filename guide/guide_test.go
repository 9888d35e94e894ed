package guide

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopela/regions/country"
	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/foi"
	"github.com/jopela/regions/resolver"
)

func writeGuide(t *testing.T, root, dir, name, content string) string {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	path := filepath.Join(full, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFSDiscovery_List(t *testing.T) {
	root := t.TempDir()
	montreal := writeGuide(t, root, "Montreal-269", "result.json", `{"search":"Montreal"}`)
	boston := writeGuide(t, root, "Boston-48", "result.json", `{"search":"Boston"}`)
	nested := writeGuide(t, root, "usa/Austin-12", "result.json", `{"search":"Austin"}`)
	writeGuide(t, root, "Paris-69", "draft.json", `{"search":"Paris"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "result.json"), 0o755))

	files, err := FSDiscovery{Root: root}.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []File{{Path: boston}, {Path: montreal}, {Path: nested}}, files)
}

func TestFSDiscovery_ListCustomFilename(t *testing.T) {
	root := t.TempDir()
	draft := writeGuide(t, root, "Paris-69", "draft.json", `{"search":"Paris"}`)
	writeGuide(t, root, "Lyon-70", "result.json", `{"search":"Lyon"}`)

	files, err := FSDiscovery{Root: root, Filename: "draft.json"}.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []File{{Path: draft}}, files)
}

func TestFSDiscovery_ListEmptyAndMissing(t *testing.T) {
	files, err := FSDiscovery{Root: t.TempDir()}.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = FSDiscovery{Root: filepath.Join(t.TempDir(), "missing")}.List(context.Background())
	assert.Error(t, err)
}

func TestFSDiscovery_ListSkipsUnreadableSubtree(t *testing.T) {
	root := t.TempDir()
	montreal := writeGuide(t, root, "a-Montreal", "result.json", `{"search":"Montreal"}`)
	writeGuide(t, root, "b-locked", "result.json", `{"search":"Hidden"}`)
	paris := writeGuide(t, root, "c-Paris", "result.json", `{"search":"Paris"}`)

	locked := filepath.Join(root, "b-locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	if _, err := os.ReadDir(locked); err == nil {
		t.Skip("directory permissions are not enforced for this user")
	}

	var logs bytes.Buffer
	d := FSDiscovery{Root: root, Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	files, err := d.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []File{{Path: montreal}, {Path: paris}}, files)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "b-locked")
}

func TestFSDiscovery_ListUnreadableRoot(t *testing.T) {
	root := t.TempDir()
	writeGuide(t, root, "Lima-1", "result.json", `{"search":"Lima"}`)
	require.NoError(t, os.Chmod(root, 0o000))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })
	if _, err := os.ReadDir(root); err == nil {
		t.Skip("directory permissions are not enforced for this user")
	}

	_, err := FSDiscovery{Root: root}.List(context.Background())
	assert.Error(t, err)
}

func TestFSDiscovery_ListCancelled(t *testing.T) {
	root := t.TempDir()
	writeGuide(t, root, "Lima-1", "result.json", `{"search":"Lima"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FSDiscovery{Root: root}.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFSDiscovery_SearchString(t *testing.T) {
	root := t.TempDir()
	d := FSDiscovery{Root: root}

	tests := []struct {
		name    string
		content string
		field   string
		want    string
		wantErr error
	}{
		{name: "top level", content: `{"search":" Montreal "}`, want: "Montreal"},
		{name: "nested path", content: `{"city":{"query":"Lyon, France"}}`, field: "city.query", want: "Lyon, France"},
		{name: "missing field", content: `{"title":"x"}`, wantErr: errors.ErrInvalidData},
		{name: "not a string", content: `{"search":42}`, wantErr: errors.ErrInvalidData},
		{name: "empty string", content: `{"search":"  "}`, wantErr: errors.ErrInvalidData},
		{name: "parent not object", content: `{"city":"Lyon"}`, field: "city.query", wantErr: errors.ErrInvalidData},
		{name: "malformed json", content: `{"search":`, wantErr: errors.ErrParsingFailed},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeGuide(t, root, filepath.Join("case", string(rune('a'+i))), "result.json", tt.content)
			d.SearchField = tt.field

			got, err := d.SearchString(context.Background(), File{Path: path})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFSDiscovery_SearchStringUnreadable(t *testing.T) {
	_, err := FSDiscovery{}.SearchString(context.Background(), File{Path: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

type staticSource map[string][]foi.Facility

func (s staticSource) Fetch(_ context.Context, alpha3 string) []foi.Facility {
	return s[alpha3]
}

func TestBuilder_Build(t *testing.T) {
	table := country.NewTable(country.Code{Alpha3: "CAN", Name: "Canada"})
	source := staticSource{"CAN": {{ID: "1", Name: "CN Tower", Lat: 43.64, Lon: -79.38}}}
	b := NewBuilder(table, source, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	members := []File{{Path: "/g/Montreal/result.json"}, {Path: "/g/Quebec/result.json"}}
	res := resolver.NewResource("http://dbpedia.org/resource/Canada")

	g, err := b.Build(context.Background(), res, "CAN", members)
	require.NoError(t, err)

	assert.Equal(t, country.Code{Alpha3: "CAN", Name: "Canada"}, g.Code)
	assert.Equal(t, res, g.Resource)
	assert.Equal(t, AdminLevelCountry, g.AdminLevel)
	assert.Equal(t, members, g.Guides)
	assert.Len(t, g.Facilities, 1)

	// The guide owns its member slice.
	members[0] = File{Path: "mutated"}
	assert.Equal(t, "/g/Montreal/result.json", g.Guides[0].Path)
}

func TestBuilder_BuildFailClosedFacilities(t *testing.T) {
	table := country.NewTable(country.Code{Alpha3: "FRA", Name: "France"})
	b := NewBuilder(table, staticSource{}, nil)

	g, err := b.Build(context.Background(), resolver.NewResource("http://dbpedia.org/resource/France"), "FRA", nil)
	require.NoError(t, err)
	assert.NotNil(t, g.Facilities)
	assert.Empty(t, g.Facilities)
	assert.Empty(t, g.Guides)
}

func TestBuilder_UnknownCountry(t *testing.T) {
	b := NewBuilder(country.NewTable(), nil, nil)
	_, err := b.Build(context.Background(), resolver.Resource{}, "XKX", nil)
	assert.ErrorIs(t, err, errors.ErrUnknownCountry)
}

func TestRegional_JSON(t *testing.T) {
	g := Regional{
		Code:       country.Code{Alpha3: "PER", Name: "Peru"},
		Resource:   resolver.NewResource("http://dbpedia.org/resource/Peru"),
		AdminLevel: AdminLevelCountry,
		Guides:     []File{{Path: "/g/Lima/result.json"}},
		Facilities: []foi.Facility{},
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": {"alpha3": "PER", "name": "Peru"},
		"resource": "http://dbpedia.org/resource/Peru",
		"admin_level": 2,
		"guides": ["/g/Lima/result.json"],
		"facilities": []
	}`, string(data))
}
