package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopela/regions/country"
	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/foi"
	"github.com/jopela/regions/guide"
	"github.com/jopela/regions/metric"
	"github.com/jopela/regions/pkg/cache"
	"github.com/jopela/regions/pkg/memo"
	"github.com/jopela/regions/resolver"
	"github.com/jopela/regions/testutil"
)

const (
	montreal = "http://dbpedia.org/resource/Montreal"
	toronto  = "http://dbpedia.org/resource/Toronto"
	boston   = "http://dbpedia.org/resource/Boston"
	canada   = "http://dbpedia.org/resource/Canada"
	usa      = "http://dbpedia.org/resource/United_States"
)

type fixture struct {
	gw        *testutil.MockGateway
	discovery *testutil.MockDiscovery
	foi       *testutil.MockFOISource
	logs      *testutil.LogCapture
	metrics   *metric.Metrics
	countries *country.Table
	orch      *Orchestrator
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		gw: testutil.NewMockGateway().
			City("Montreal", montreal).
			City("Toronto", toronto).
			City("Boston", boston).
			Country(montreal, canada).
			Country(toronto, canada).
			Country(boston, usa).
			Alpha3(canada, "CAN").
			Alpha3(usa, "USA"),
		discovery: testutil.NewMockDiscovery(),
		foi:       testutil.NewMockFOISource(),
		metrics:   metric.NewMetrics(),
		countries: country.NewTable(
			country.Code{Alpha3: "CAN", Name: "Canada"},
			country.Code{Alpha3: "MEX", Name: "Mexico"},
			country.Code{Alpha3: "USA", Name: "United States of America"},
		),
	}

	var logger *slog.Logger
	logger, f.logs = testutil.NewLogCapture()

	c, err := cache.NewSimple[resolver.Binding]()
	require.NoError(t, err)
	res := resolver.New(f.gw, memo.New[resolver.Binding](c))
	builder := guide.NewBuilder(f.countries, f.foi, logger)

	opts = append([]Option{WithLogger(logger), WithMetrics(f.metrics)}, opts...)
	f.orch = New(res, f.discovery, builder, f.countries, opts...)
	return f
}

func (f *fixture) standardGuides() {
	f.discovery.
		Add("ca/montreal/result.json", "Montreal, Quebec").
		Add("us/boston/result.json", "Boston").
		Add("ca/toronto/result.json", "Toronto, Ontario")
}

func paths(files []guide.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestRun_RequestedSubset(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()

	guides, report, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.NoError(t, err)

	require.Len(t, guides, 1)
	assert.Equal(t, "CAN", guides[0].Code.Alpha3)
	assert.Equal(t, "Canada", guides[0].Code.Name)
	assert.Equal(t, canada, guides[0].Resource.URI())
	assert.Equal(t, guide.AdminLevelCountry, guides[0].AdminLevel)
	assert.Equal(t, []string{"ca/montreal/result.json", "ca/toronto/result.json"}, paths(guides[0].Guides))

	assert.Equal(t, []string{"CAN"}, report.Requested)
	assert.Equal(t, []string{"CAN"}, report.Generated)
	assert.Empty(t, report.Missing, "unrequested countries are never missing")
	assert.False(t, report.Partial())
	assert.Equal(t, 3, report.Guides)
	assert.Equal(t, 1, report.Skipped)
	assert.NotEmpty(t, report.RunID)

	notRequired := f.logs.Find(slog.LevelInfo, "alpha3", "USA")
	require.Len(t, notRequired, 1)
	assert.Contains(t, notRequired[0].Message, "not required")
	assert.Empty(t, f.logs.Find(slog.LevelError, "alpha3", "USA"))

	assert.Equal(t, []string{"CAN"}, f.foi.Requested())
}

func TestRun_MissingCountryIsReportedNotFatal(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()

	guides, report, err := f.orch.Run(context.Background(), []string{"CAN", "MEX"})
	require.NoError(t, err)

	require.Len(t, guides, 1)
	assert.Equal(t, "CAN", guides[0].Code.Alpha3)
	assert.Equal(t, []string{"MEX"}, report.Missing)
	assert.True(t, report.Partial())

	missing := f.logs.Find(slog.LevelError, "alpha3", "MEX")
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "Could not generate")
	assert.Equal(t, float64(1), promtestutil.ToFloat64(f.metrics.CountriesMissing))
}

func TestRun_NoGuidesAbortsBeforeAnyQuery(t *testing.T) {
	f := newFixture(t)

	guides, _, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.Error(t, err)
	assert.Nil(t, guides)
	assert.ErrorIs(t, err, errors.ErrNoGuides)
	assert.True(t, errors.IsFatal(err))
	assert.Zero(t, f.gw.Calls())
	assert.Empty(t, f.foi.Requested())
}

func TestRun_DiscoveryFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.discovery.FailList(fmt.Errorf("permission denied"))

	_, _, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoGuides)
	assert.Zero(t, f.gw.Calls())
}

func TestRun_NoValidCountriesAbortsBeforeDiscovery(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()

	_, _, err := f.orch.Run(context.Background(), []string{"XXX", "Q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoCountries)
	assert.True(t, errors.IsFatal(err))
	assert.Zero(t, f.discovery.ListCalls())
	assert.Zero(t, f.gw.Calls())
	assert.Len(t, f.logs.Find(slog.LevelWarn, "alpha3", "XXX"), 1)
}

func TestRun_UnresolvedCityIsDropped(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()
	f.discovery.Add("xx/atlantis/result.json", "Atlantis")

	guides, report, err := f.orch.Run(context.Background(), []string{"CAN", "USA"})
	require.NoError(t, err)

	require.Len(t, guides, 2)
	for _, g := range guides {
		assert.NotContains(t, paths(g.Guides), "xx/atlantis/result.json")
	}
	assert.Equal(t, 1, report.Dropped)
	assert.Empty(t, report.Missing)

	dropped := f.logs.Find(slog.LevelError, "guide", "xx/atlantis/result.json")
	require.Len(t, dropped, 1)
	assert.Equal(t, ReasonNoBinding, dropped[0].Attrs["reason"])
	assert.Equal(t, metric.StageCity, dropped[0].Attrs["stage"])
	assert.Equal(t, float64(1), promtestutil.ToFloat64(f.metrics.GuidesDropped.WithLabelValues(metric.StageCity)))
}

func TestRun_TransportFailureLoggedDistinctly(t *testing.T) {
	f := newFixture(t)
	f.gw = testutil.NewMockGateway().
		City("Montreal", montreal).
		Fail("<"+montreal+"> dbowl:country", testutil.TransportError(nil))
	c, err := cache.NewSimple[resolver.Binding]()
	require.NoError(t, err)
	f.orch.resolver = resolver.New(f.gw, memo.New[resolver.Binding](c))
	f.discovery.Add("ca/montreal/result.json", "Montreal")

	guides, report, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.NoError(t, err)
	assert.Empty(t, guides)
	assert.Equal(t, []string{"CAN"}, report.Missing)

	dropped := f.logs.Find(slog.LevelError, "guide", "ca/montreal/result.json")
	require.Len(t, dropped, 1)
	assert.Equal(t, ReasonQueryFailed, dropped[0].Attrs["reason"])
	assert.Equal(t, metric.StageCountry, dropped[0].Attrs["stage"])
}

func TestRun_UnreadableGuideIsDropped(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()
	f.discovery.AddUnreadable("broken/result.json")

	_, report, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Dropped)

	dropped := f.logs.Find(slog.LevelError, "guide", "broken/result.json")
	require.Len(t, dropped, 1)
	assert.Equal(t, metric.StageSearch, dropped[0].Attrs["stage"])
	assert.Equal(t, ReasonInvalid, dropped[0].Attrs["reason"])
}

func TestRun_UncodedCountryGroupIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.gw.City("Lima", "http://dbpedia.org/resource/Lima").
		Country("http://dbpedia.org/resource/Lima", "http://dbpedia.org/resource/Peru")
	f.standardGuides()
	f.discovery.Add("pe/lima/result.json", "Lima")

	guides, report, err := f.orch.Run(context.Background(), []string{"ALL"})
	require.NoError(t, err)
	assert.Len(t, guides, 2)
	assert.Equal(t, []string{"MEX"}, report.Missing)

	skipped := f.logs.Find(slog.LevelError, "resource", "http://dbpedia.org/resource/Peru")
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Message, "Cannot determine country code")
	assert.Equal(t, float64(1), promtestutil.ToFloat64(f.metrics.GroupsSkipped.WithLabelValues(ReasonNoBinding)))
}

func TestRun_AllTokenSelectsWholeTable(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()

	_, report, err := f.orch.Run(context.Background(), []string{"CAN", "ALL", "XXX"})
	require.NoError(t, err)

	var all []string
	for _, c := range f.countries.All() {
		all = append(all, c.Alpha3)
	}
	assert.Equal(t, all, report.Requested)
	assert.Equal(t, []string{"MEX"}, report.Missing)
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()
	f.foi.Set("CAN", foi.Facility{ID: "1", Name: "Trudeau", Kind: "airport", Lat: 45.47, Lon: -73.74})

	first, _, err := f.orch.Run(context.Background(), []string{"CAN", "USA"})
	require.NoError(t, err)
	calls := f.gw.Calls()

	second, _, err := f.orch.Run(context.Background(), []string{"CAN", "USA"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, calls, f.gw.Calls(), "second run is served from the memo")

	fresh := newFixture(t)
	fresh.standardGuides()
	fresh.foi.Set("CAN", foi.Facility{ID: "1", Name: "Trudeau", Kind: "airport", Lat: 45.47, Lon: -73.74})
	third, _, err := fresh.orch.Run(context.Background(), []string{"CAN", "USA"})
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestRun_ParallelKeepsDiscoveryOrder(t *testing.T) {
	sequential := newFixture(t, WithWorkers(1))
	parallel := newFixture(t, WithWorkers(8))
	parallel.gw.SetDelay(2 * time.Millisecond)

	for _, f := range []*fixture{sequential, parallel} {
		for i := 0; i < 12; i++ {
			city := []string{"Montreal", "Boston", "Toronto"}[i%3]
			f.discovery.Add(fmt.Sprintf("%02d/result.json", i), city)
		}
	}

	want, _, err := sequential.orch.Run(context.Background(), []string{"CAN", "USA"})
	require.NoError(t, err)
	got, _, err := parallel.orch.Run(context.Background(), []string{"CAN", "USA"})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	require.Len(t, got, 2)
	assert.Equal(t, "CAN", got[0].Code.Alpha3)
	assert.Equal(t, []string{
		"00/result.json", "02/result.json", "03/result.json", "05/result.json",
		"06/result.json", "08/result.json", "09/result.json", "11/result.json",
	}, paths(got[0].Guides))
	assert.Equal(t, 1, parallel.gw.CallsMatching("<"+montreal+"> dbowl:country"))
}

func TestRun_MergesResourcesSharingCode(t *testing.T) {
	f := newFixture(t)
	redirect := "http://dbpedia.org/resource/Dominion_of_Canada"
	f.gw.City("Quebec City", "http://dbpedia.org/resource/Quebec_City").
		Country("http://dbpedia.org/resource/Quebec_City", redirect).
		Alpha3(redirect, "CAN")
	f.discovery.
		Add("ca/quebec/result.json", "Quebec City").
		Add("ca/montreal/result.json", "Montreal")

	guides, _, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, redirect, guides[0].Resource.URI())
	assert.Equal(t, []string{"ca/quebec/result.json", "ca/montreal/result.json"}, paths(guides[0].Guides))
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.orch.Run(ctx, []string{"CAN"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Metrics(t *testing.T) {
	f := newFixture(t)
	f.standardGuides()

	_, _, err := f.orch.Run(context.Background(), []string{"CAN"})
	require.NoError(t, err)

	assert.Equal(t, float64(3), promtestutil.ToFloat64(f.metrics.GuidesDiscovered))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(f.metrics.GuidesGenerated))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(f.metrics.GroupsSkipped.WithLabelValues(ReasonNotRequested)))
	assert.Equal(t, 1, promtestutil.CollectAndCount(f.metrics.RunDuration))
}
