package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/plancache"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/routecalculator"
	"github.com/travigo/journeyplanner/pkg/spatial"
	"github.com/travigo/journeyplanner/pkg/transportdata"
)

var tuesday = time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)

func newPlanner(t *testing.T) *Planner {
	return newPlannerWithConfig(t, config.Default())
}

func newPlannerWithConfig(t *testing.T, cfg config.Config) *Planner {
	repository, err := transportdata.SampleNetwork()
	require.NoError(t, err)

	graph, err := journeygraph.Build(repository)
	require.NoError(t, err)

	calculator := routecalculator.NewRouteCalculator(graph, repository, reachability.BuildMatrix(graph, repository), cfg)

	return New(calculator, spatial.NewStationIndex(repository))
}

func newPlanCache(t *testing.T) *plancache.Cache {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return plancache.New(client, time.Hour)
}

func request(from string, to string, at ctdf.TimeOfDay) Request {
	return Request{
		From: StationEndpoint(from),
		To:   StationEndpoint(to),
		Date: tuesday,
		Time: at,
	}
}

func TestRequestValidate(t *testing.T) {
	negative := -1

	invalid := map[string]Request{
		"missing start":    {To: StationEndpoint("POM"), Date: tuesday},
		"missing date":     {From: StationEndpoint("CRN"), To: StationEndpoint("POM")},
		"same station":     {From: StationEndpoint("CRN"), To: StationEndpoint("CRN"), Date: tuesday},
		"same location":    {From: LocationEndpoint(53.4, -2.3), To: LocationEndpoint(53.4, -2.3), Date: tuesday},
		"negative changes": {From: StationEndpoint("CRN"), To: StationEndpoint("POM"), Date: tuesday, MaxChanges: &negative},
		"bad location":     {From: LocationEndpoint(123, -2.3), To: StationEndpoint("POM"), Date: tuesday},
		"station and location": {
			From: Endpoint{StationRef: "CRN", Location: &ctdf.LatLong{Latitude: 53.4, Longitude: -2.3}},
			To:   StationEndpoint("POM"),
			Date: tuesday,
		},
	}

	for name, r := range invalid {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, r.Validate(), ErrInvalidRequest)
		})
	}

	assert.NoError(t, request("CRN", "POM", ctdf.TimeOf(8, 0)).Validate())
}

func TestRequestKey(t *testing.T) {
	r := request("CRN", "POM", ctdf.TimeOf(8, 0))
	cfg := config.Default()

	assert.Equal(t, r.Key(cfg), r.Key(config.Default()))
	assert.NotEqual(t, r.Key(cfg), request("CRN", "POM", ctdf.TimeOf(8, 1)).Key(cfg))

	changed := map[string]func(*config.Config){
		"max changes":          func(c *config.Config) { c.MaxChanges = 2 },
		"max wait":             func(c *config.Config) { c.MaxWait = 30 },
		"query interval":       func(c *config.Config) { c.QueryInterval = 3 },
		"max journey duration": func(c *config.Config) { c.MaxJourneyDuration = 60 },
		"max results":          func(c *config.Config) { c.MaxNumResults = 1 },
		"max path length":      func(c *config.Config) { c.MaxPathLength = 100 },
		"nearest stops":        func(c *config.Config) { c.NumOfNearestStopsForWalking = 1 },
		"nearest stop range":   func(c *config.Config) { c.NearestStopRangeKM = 0.5 },
		"walking speed":        func(c *config.Config) { c.WalkingMPH = 4 },
		"edge per trip":        func(c *config.Config) { c.EdgePerTrip = !c.EdgePerTrip },
	}

	for name, change := range changed {
		t.Run(name, func(t *testing.T) {
			other := config.Default()
			change(&other)
			assert.NotEqual(t, r.Key(cfg), r.Key(other))
		})
	}

	expiry := config.Default()
	expiry.CacheExpiry = "PT5M"
	assert.Equal(t, r.Key(cfg), r.Key(expiry))
}

func TestPlanStations(t *testing.T) {
	planner := newPlanner(t)

	result, err := planner.Plan(context.Background(), request("CRN", "POM", ctdf.TimeOf(8, 0)))
	require.NoError(t, err)
	require.NotEmpty(t, result.Journeys)
	assert.LessOrEqual(t, len(result.Journeys), config.Default().MaxNumResults)
	assert.False(t, result.Cached)
	assert.Nil(t, result.Diagnostics)

	assert.Equal(t, ctdf.TimeOf(8, 9), result.Journeys[0].ArrivalTime())
	for i := 1; i < len(result.Journeys); i++ {
		previous := result.Journeys[i-1].ArrivalTime()
		assert.False(t, result.Journeys[i].ArrivalTime().IsBefore(previous, journeygraph.ServiceDayStart))
	}
}

func TestPlanNothingFound(t *testing.T) {
	planner := newPlanner(t)

	result, err := planner.Plan(context.Background(), request("ALT", "BRY", ctdf.TimeOf(3, 15)))
	require.NoError(t, err)
	assert.Empty(t, result.Journeys)
	assert.NotEmpty(t, result.Diagnostics)
}

func TestPlanUnknownStation(t *testing.T) {
	planner := newPlanner(t)

	_, err := planner.Plan(context.Background(), request("CRN", "NOWHERE", ctdf.TimeOf(8, 0)))
	assert.ErrorIs(t, err, transportdata.ErrUnknownStation)
}

func TestPlanMaxChangesOverride(t *testing.T) {
	planner := newPlanner(t)

	r := request("TIM", "POM", ctdf.TimeOf(8, 0))
	result, err := planner.Plan(context.Background(), r)
	require.NoError(t, err)
	require.NotEmpty(t, result.Journeys)
	assert.Equal(t, 1, result.Journeys[0].Changes())

	none := 0
	r.MaxChanges = &none
	result, err = planner.Plan(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, result.Journeys)
	assert.Contains(t, result.Diagnostics, "TooManyChanges")
}

func TestPlanFromLocation(t *testing.T) {
	planner := newPlanner(t)

	r := Request{
		From: LocationEndpoint(53.4060, -2.3380),
		To:   StationEndpoint("CRN"),
		Date: tuesday,
		Time: ctdf.TimeOf(8, 0),
	}

	result, err := planner.Plan(context.Background(), r)
	require.NoError(t, err)
	require.NotEmpty(t, result.Journeys)
	assert.Equal(t, ctdf.StageTypeWalking, result.Journeys[0].Stages[0].Type)
}

func TestPlanCached(t *testing.T) {
	planner := newPlanner(t).WithCache(newPlanCache(t))
	r := request("CRN", "POM", ctdf.TimeOf(8, 0))

	first, err := planner.Plan(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := planner.Plan(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, second.Cached)

	require.Len(t, second.Journeys, len(first.Journeys))
	for i := range first.Journeys {
		assert.Equal(t, first.Journeys[i].GenerateFunctionalHash(), second.Journeys[i].GenerateFunctionalHash())
	}
}

func TestPlanCachedKeepsDiagnostics(t *testing.T) {
	planner := newPlanner(t).WithCache(newPlanCache(t))
	r := request("ALT", "BRY", ctdf.TimeOf(3, 15))

	first, err := planner.Plan(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.NotEmpty(t, first.Diagnostics)

	second, err := planner.Plan(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Empty(t, second.Journeys)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestPlanCacheSeparatesConfigurations(t *testing.T) {
	cache := newPlanCache(t)
	r := request("CRN", "POM", ctdf.TimeOf(8, 0))

	first, err := newPlanner(t).WithCache(cache).Plan(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	cfg := config.Default()
	cfg.EdgePerTrip = !cfg.EdgePerTrip
	other, err := newPlannerWithConfig(t, cfg).WithCache(cache).Plan(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, other.Cached)

	again, err := newPlanner(t).WithCache(cache).Plan(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, again.Cached)
}

func journeyArriving(depart ctdf.TimeOfDay, arrive ctdf.TimeOfDay, stages int) *ctdf.RawJourney {
	journey := &ctdf.RawJourney{QueryTime: depart}
	for i := 0; i < stages; i++ {
		journey.Stages = append(journey.Stages, ctdf.Stage{
			Type:                ctdf.StageTypeVehicle,
			FirstDepartureTime:  depart,
			ExpectedArrivalTime: arrive,
		})
	}
	return journey
}

func TestSortJourneys(t *testing.T) {
	late := journeyArriving(ctdf.TimeOf(8, 0), ctdf.TimeOf(9, 0), 1)
	early := journeyArriving(ctdf.TimeOf(8, 10), ctdf.TimeOf(8, 40), 1)
	earlierDeparture := journeyArriving(ctdf.TimeOf(8, 5), ctdf.TimeOf(8, 40), 2)
	fewerStages := journeyArriving(ctdf.TimeOf(8, 5), ctdf.TimeOf(8, 40), 1)
	afterMidnight := journeyArriving(ctdf.TimeOf(23, 50), ctdf.TimeOf(0, 20), 1)

	journeys := []*ctdf.RawJourney{afterMidnight, late, early, earlierDeparture, fewerStages}
	SortJourneys(journeys)

	assert.Equal(t, []*ctdf.RawJourney{fewerStages, earlierDeparture, early, late, afterMidnight}, journeys)
}

func TestWriteResult(t *testing.T) {
	planner := newPlanner(t)

	result, err := planner.Plan(context.Background(), request("CRN", "POM", ctdf.TimeOf(8, 0)))
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, WriteResult(&text, FormatText, result))
	assert.Contains(t, text.String(), "Journey 1: 08:01 -> 08:09")
	assert.Contains(t, text.String(), "Cornbrook")

	var csv bytes.Buffer
	require.NoError(t, WriteResult(&csv, FormatCSV, result))
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	assert.Equal(t, "journey,stage,type,from,to,route,trip,platform,departs,arrives,cost,passed_stops", lines[0])
	assert.Equal(t, "1,1,Vehicle,CRN,POM,PICMCU,BLUE_OUT_0753,CRN3,08:01,08:09,8,0", lines[1])

	var encoded bytes.Buffer
	require.NoError(t, WriteResult(&encoded, FormatJSON, result))

	var decoded Result
	require.NoError(t, json.Unmarshal(encoded.Bytes(), &decoded))
	assert.Len(t, decoded.Journeys, len(result.Journeys))
	assert.Equal(t, ctdf.TimeOf(8, 9), decoded.Journeys[0].ArrivalTime())
}

func TestWriteResultNothingFound(t *testing.T) {
	result := &Result{
		Request:     request("ALT", "BRY", ctdf.TimeOf(3, 15)),
		Diagnostics: map[string]int{"DoesNotOperateOnTime": 4},
	}

	var text bytes.Buffer
	require.NoError(t, WriteResult(&text, FormatText, result))
	assert.Contains(t, text.String(), "No journeys found")
	assert.Contains(t, text.String(), "DoesNotOperateOnTime: 4")
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
