package routecalculator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/heuristics"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/spatial"
	"github.com/travigo/journeyplanner/pkg/transportdata"
)

var tuesday = time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)

func newCalculator(t *testing.T, repository *transportdata.Memory, cfg config.Config) *RouteCalculator {
	graph, err := journeygraph.Build(repository)
	require.NoError(t, err)

	return NewRouteCalculator(graph, repository, reachability.BuildMatrix(graph, repository), cfg)
}

func sampleCalculator(t *testing.T, cfg config.Config) *RouteCalculator {
	repository, err := transportdata.SampleNetwork()
	require.NoError(t, err)

	return newCalculator(t, repository, cfg)
}

func vehicleStages(journey *ctdf.RawJourney) []ctdf.Stage {
	var stages []ctdf.Stage
	for _, stage := range journey.Stages {
		if stage.Type == ctdf.StageTypeVehicle {
			stages = append(stages, stage)
		}
	}
	return stages
}

func TestCalculateRouteCornbrookToPomona(t *testing.T) {
	for _, edgePerTrip := range []bool{true, false} {
		cfg := config.Default()
		cfg.EdgePerTrip = edgePerTrip
		calculator := sampleCalculator(t, cfg)

		stream, err := calculator.CalculateRoute(context.Background(), "CRN", "POM", []ctdf.TimeOfDay{ctdf.TimeOf(8, 0)}, tuesday, 3)
		require.NoError(t, err)

		journeys, err := stream.All(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, journeys)

		first := journeys[0]
		require.Len(t, first.Stages, 1)

		stage := first.Stages[0]
		assert.Equal(t, ctdf.StageTypeVehicle, stage.Type)
		assert.Equal(t, "CRN", stage.Origin.StationRef)
		assert.Equal(t, "POM", stage.Destination.StationRef)
		assert.Equal(t, "BLUE_OUT_0753", stage.TripRef)
		assert.Equal(t, ctdf.TimeOf(8, 1), stage.FirstDepartureTime)
		assert.Equal(t, ctdf.TimeOf(8, 9), stage.ExpectedArrivalTime)
		assert.Equal(t, 8, stage.Cost)

		for _, journey := range journeys {
			assert.False(t, journey.DepartureTime().IsBefore(ctdf.TimeOf(8, 0), ctdf.TimeOf(3, 0)))
		}
	}
}

func TestCalculateRouteIsDeterministic(t *testing.T) {
	calculator := sampleCalculator(t, config.Default())
	queryTimes := QueryTimes(ctdf.TimeOf(8, 0), calculator.Config())

	hashes := func() []string {
		stream, err := calculator.CalculateRoute(context.Background(), "CRN", "PIC", queryTimes, tuesday, 5)
		require.NoError(t, err)

		journeys, err := stream.All(context.Background())
		require.NoError(t, err)

		var hashes []string
		for _, journey := range journeys {
			hashes = append(hashes, journey.GenerateFunctionalHash())
		}
		return hashes
	}

	first := hashes()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, hashes())
}

func TestCalculateRouteNoServiceOvernight(t *testing.T) {
	calculator := sampleCalculator(t, config.Default())

	stream, err := calculator.CalculateRoute(context.Background(), "ALT", "BRY", []ctdf.TimeOfDay{ctdf.TimeOf(3, 15)}, tuesday, 5)
	require.NoError(t, err)

	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, journeys)

	require.NotNil(t, stream.Reasons())
	assert.Greater(t, stream.Reasons().Rejections(), 0)
}

func TestCalculateRouteUnknownStation(t *testing.T) {
	calculator := sampleCalculator(t, config.Default())

	_, err := calculator.CalculateRoute(context.Background(), "CRN", "NOWHERE", []ctdf.TimeOfDay{ctdf.TimeOf(8, 0)}, tuesday, 5)
	assert.ErrorIs(t, err, transportdata.ErrUnknownStation)
}

func TestCalculateRouteCancelled(t *testing.T) {
	calculator := sampleCalculator(t, config.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream, err := calculator.CalculateRoute(ctx, "ALT", "BRY", []ctdf.TimeOfDay{ctdf.TimeOf(8, 0)}, tuesday, 5)
	require.NoError(t, err)

	_, err = stream.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

const interchangeNetwork = `
stations:
  - {id: A, name: Alpha, latitude: 53.40, longitude: -2.30, tram: true, platforms: [{code: "1"}]}
  - {id: B, name: Bravo, latitude: 53.41, longitude: -2.30, tram: true, interchange: true, platforms: [{code: "1"}]}
  - {id: C, name: Charlie, latitude: 53.42, longitude: -2.30, tram: true, interchange: true, platforms: [{code: "1"}]}
  - {id: D, name: Delta, latitude: 53.43, longitude: -2.30, tram: true, interchange: true, platforms: [{code: "1"}]}
  - {id: E, name: Echo, latitude: 53.44, longitude: -2.30, tram: true, platforms: [{code: "1"}]}
routes:
  - {id: R1, name: Alpha - Bravo, mode: Tram}
  - {id: R2, name: Bravo - Charlie, mode: Tram}
  - {id: R3, name: Charlie - Delta, mode: Tram}
  - {id: R4, name: Delta - Echo, mode: Tram}
services:
  - {id: S1, route: R1, days: [Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday], start: "2024-01-01", end: "2024-12-31"}
  - {id: S2, route: R2, days: [Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday], start: "2024-01-01", end: "2024-12-31"}
  - {id: S3, route: R3, days: [Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday], start: "2024-01-01", end: "2024-12-31"}
  - {id: S4, route: R4, days: [Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday], start: "2024-01-01", end: "2024-12-31"}
trips:
  - id: T1
    service: S1
    route: R1
    calls:
      - {station: A, platform: "1", depart: "10:00"}
      - {station: B, platform: "1", arrive: "10:05"}
  - id: T2
    service: S2
    route: R2
    calls:
      - {station: B, platform: "1", depart: "10:10"}
      - {station: C, platform: "1", arrive: "10:15"}
  - id: T3
    service: S3
    route: R3
    calls:
      - {station: C, platform: "1", depart: "10:20"}
      - {station: D, platform: "1", arrive: "10:25"}
  - id: T4
    service: S4
    route: R4
    calls:
      - {station: D, platform: "1", depart: "10:30"}
      - {station: E, platform: "1", arrive: "10:35"}
`

func TestCalculateRouteEnforcesMaxChanges(t *testing.T) {
	repository, err := transportdata.LoadFromYAML([]byte(interchangeNetwork))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.MaxChanges = 2
	calculator := newCalculator(t, repository, cfg)

	queryTimes := []ctdf.TimeOfDay{ctdf.TimeOf(9, 58)}

	stream, err := calculator.CalculateRoute(context.Background(), "A", "E", queryTimes, tuesday, 5)
	require.NoError(t, err)
	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, journeys)

	cfg.MaxChanges = 3
	stream, err = calculator.WithConfig(cfg).CalculateRoute(context.Background(), "A", "E", queryTimes, tuesday, 5)
	require.NoError(t, err)
	journeys, err = stream.All(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, journeys)

	stages := vehicleStages(journeys[0])
	require.Len(t, stages, 4)
	assert.Equal(t, 3, journeys[0].Changes())
	assert.Equal(t, []string{"T1", "T2", "T3", "T4"}, []string{stages[0].TripRef, stages[1].TripRef, stages[2].TripRef, stages[3].TripRef})
	assert.Equal(t, ctdf.TimeOf(10, 35), journeys[0].ArrivalTime())
}

func TestCalculateRouteArriveBy(t *testing.T) {
	calculator := sampleCalculator(t, config.Default())

	stream, err := calculator.CalculateRouteArriveBy(context.Background(), "CRN", "POM", ctdf.TimeOf(8, 20), tuesday)
	require.NoError(t, err)

	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, journeys)

	first := journeys[0]
	assert.Equal(t, ctdf.TimeOf(8, 1), first.DepartureTime())
	assert.Equal(t, ctdf.TimeOf(8, 9), first.ArrivalTime())
	assert.LessOrEqual(t, len(journeys), calculator.Config().MaxNumResults*len(QueryTimes(ctdf.TimeOf(7, 58), calculator.Config())))
}

func TestQueryTimes(t *testing.T) {
	times := QueryTimes(ctdf.TimeOf(8, 0), config.Default())

	assert.Equal(t, []ctdf.TimeOfDay{
		ctdf.TimeOf(8, 0),
		ctdf.TimeOf(8, 6),
		ctdf.TimeOf(8, 12),
		ctdf.TimeOf(8, 18),
		ctdf.TimeOf(8, 24),
	}, times)

	cfg := config.Default()
	cfg.QueryInterval = 0
	assert.Equal(t, []ctdf.TimeOfDay{ctdf.TimeOf(23, 50)}, QueryTimes(ctdf.TimeOf(23, 50), cfg))
}

func TestJourneyStreamClosesOnce(t *testing.T) {
	count := 0
	stream := newJourneyStream(func(ctx context.Context) (*ctdf.RawJourney, error) {
		count++
		if count > 2 {
			return nil, nil
		}
		return &ctdf.RawJourney{QueryTime: ctdf.TimeOf(8, count)}, nil
	}, nil)

	var order []string
	stream.OnClose(func() { order = append(order, "first") })
	stream.OnClose(func() { order = append(order, "second") })

	assert.True(t, stream.Next(context.Background()))
	assert.Equal(t, ctdf.TimeOf(8, 1), stream.Current().QueryTime)

	assert.NoError(t, stream.Close())
	assert.NoError(t, stream.Close())
	assert.Equal(t, []string{"first", "second"}, order)

	assert.False(t, stream.Next(context.Background()))
	assert.Nil(t, stream.Current())
}

func TestJourneyStreamReportsOnlyWhenExhausted(t *testing.T) {
	nothing := func(ctx context.Context) (*ctdf.RawJourney, error) {
		return nil, nil
	}

	var abandoned bytes.Buffer
	stream := newJourneyStream(nothing, heuristics.NewServiceReasons(zerolog.New(&abandoned)))
	require.NoError(t, stream.Close())
	assert.Empty(t, abandoned.String())

	var drained bytes.Buffer
	stream = newJourneyStream(nothing, heuristics.NewServiceReasons(zerolog.New(&drained)))
	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, journeys)
	assert.Contains(t, drained.String(), "No journeys found")
}

func TestEmptyStream(t *testing.T) {
	stream := EmptyStream()

	journeys, err := stream.All(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, journeys)
	assert.Nil(t, stream.Reasons())
}

func locationPlanner(t *testing.T) *LocationPlanner {
	calculator := sampleCalculator(t, config.Default())
	return NewLocationPlanner(calculator, spatial.NewStationIndex(calculator.Repository()))
}

func TestFromLocation(t *testing.T) {
	planner := locationPlanner(t)
	origin := ctdf.LatLong{Latitude: 53.4060, Longitude: -2.3380}

	stream, err := planner.FromLocation(context.Background(), origin, "CRN", ctdf.TimeOf(8, 0), tuesday, false)
	require.NoError(t, err)
	assert.Greater(t, planner.calculator.Graph().TransientNodeCount(), 0)

	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, journeys)
	assert.Equal(t, 0, planner.calculator.Graph().TransientNodeCount())

	for _, journey := range journeys {
		require.GreaterOrEqual(t, len(journey.Stages), 2)

		walk := journey.Stages[0]
		assert.Equal(t, ctdf.StageTypeWalking, walk.Type)
		assert.False(t, walk.Origin.IsStation())
		assert.True(t, walk.Destination.IsStation())

		minutes := origin.WalkingMinutes(walk.Destination.Location, 3)
		assert.Equal(t, minutes, walk.Cost)
		assert.Equal(t, walk.FirstDepartureTime.PlusMinutes(minutes), walk.ExpectedArrivalTime)

		assert.Equal(t, "CRN", journey.Stages[len(journey.Stages)-1].Destination.StationRef)
	}
}

func TestToLocationEarlyClose(t *testing.T) {
	planner := locationPlanner(t)
	destination := ctdf.LatLong{Latitude: 53.4655, Longitude: -2.2773}

	stream, err := planner.ToLocation(context.Background(), "CRN", destination, ctdf.TimeOf(8, 0), tuesday, false)
	require.NoError(t, err)
	assert.Greater(t, planner.calculator.Graph().TransientNodeCount(), 0)

	require.True(t, stream.Next(context.Background()))
	journey := stream.Current()

	last := journey.Stages[len(journey.Stages)-1]
	assert.Equal(t, ctdf.StageTypeWalking, last.Type)
	assert.True(t, last.TowardsMyLocation)
	assert.False(t, last.Destination.IsStation())

	require.NoError(t, stream.Close())
	assert.Equal(t, 0, planner.calculator.Graph().TransientNodeCount())
}

func TestLocationOutOfRange(t *testing.T) {
	planner := locationPlanner(t)
	london := ctdf.LatLong{Latitude: 51.5072, Longitude: -0.1276}

	stream, err := planner.FromLocation(context.Background(), london, "CRN", ctdf.TimeOf(8, 0), tuesday, false)
	require.NoError(t, err)

	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, journeys)
	assert.Equal(t, 0, planner.calculator.Graph().TransientNodeCount())
}

func TestBetweenLocationsDirectWalk(t *testing.T) {
	planner := locationPlanner(t)
	origin := ctdf.LatLong{Latitude: 53.4650, Longitude: -2.2770}
	destination := ctdf.LatLong{Latitude: 53.4660, Longitude: -2.2770}

	stream, err := planner.BetweenLocations(context.Background(), origin, destination, ctdf.TimeOf(8, 0), tuesday, false)
	require.NoError(t, err)

	journeys, err := stream.All(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, journeys)

	var direct *ctdf.RawJourney
	for _, journey := range journeys {
		if len(journey.Stages) == 1 && journey.Stages[0].Type == ctdf.StageTypeWalking {
			direct = journey
			break
		}
	}
	require.NotNil(t, direct)
	assert.Equal(t, ctdf.TimeOf(8, 0), direct.DepartureTime())
	assert.Equal(t, origin.WalkingMinutes(destination, 3), direct.Stages[0].Cost)

	assert.Equal(t, 0, planner.calculator.Graph().TransientNodeCount())
}
