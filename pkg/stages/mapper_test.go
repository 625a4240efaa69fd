package stages

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/heuristics"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/travigo/journeyplanner/pkg/traversal"
)

func sample(t *testing.T) (*journeygraph.Graph, *transportdata.Memory) {
	repository, err := transportdata.SampleNetwork()
	require.NoError(t, err)

	graph, err := journeygraph.Build(repository)
	require.NoError(t, err)

	return graph, repository
}

func stationNode(t *testing.T, graph *journeygraph.Graph, stationRef string) journeygraph.NodeID {
	id, err := graph.StationNode(stationRef)
	require.NoError(t, err)

	return id
}

func TestMapSearchedPath(t *testing.T) {
	graph, repository := sample(t)

	queryTime := ctdf.TimeOf(8, 0)
	date := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)
	start := stationNode(t, graph, "CRN")
	end := stationNode(t, graph, "POM")

	serviceHeuristics := heuristics.NewServiceHeuristics(date, queryTime, repository.ServicesRunningOn(date), []string{"POM"},
		heuristics.Limits{MaxPathLength: 400, MaxJourneyDuration: 124, MaxChanges: 5, MaxWait: 25},
		reachability.BuildMatrix(graph, repository), heuristics.NewServiceReasons(zerolog.Nop()))
	states := traversal.NewStates(graph, []journeygraph.NodeID{end})

	path, err := traversal.NewBreadthFirst(graph, states, traversal.NewEvaluator(serviceHeuristics, states), start, queryTime).Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, path)

	journey, err := NewMapper(graph, repository).MapFoundPath(path)
	require.NoError(t, err)
	require.Len(t, journey.Stages, 1)

	stage := journey.Stages[0]
	assert.Equal(t, ctdf.StageTypeVehicle, stage.Type)
	assert.Equal(t, "CRN", stage.Origin.StationRef)
	assert.Equal(t, "Cornbrook", stage.Origin.Name)
	assert.Equal(t, "POM", stage.Destination.StationRef)
	assert.Equal(t, "PICMCU", stage.RouteRef)
	assert.Equal(t, ctdf.TransportTypeTram, stage.TransportType)
	assert.Equal(t, "BLUE_OUT_0753", stage.TripRef)
	assert.Equal(t, "CRN3", stage.PlatformRef)
	assert.Equal(t, "MediaCityUK", stage.Headsign)
	assert.Equal(t, ctdf.TimeOf(8, 1), stage.FirstDepartureTime)
	assert.Equal(t, ctdf.TimeOf(8, 9), stage.ExpectedArrivalTime)
	assert.Equal(t, 8, stage.Cost)
	assert.Equal(t, 0, stage.PassedStops)
	assert.Equal(t, queryTime, journey.QueryTime)
}

func TestMapWalkRideWalk(t *testing.T) {
	graph, repository := sample(t)

	scope := graph.NewQueryScope()
	defer scope.Close()

	home, err := scope.AddQueryNode("home", ctdf.LatLong{Latitude: 53.40, Longitude: -2.34})
	require.NoError(t, err)
	mid, err := scope.AddQueryNode("mid", ctdf.LatLong{Latitude: 53.47, Longitude: -2.25})
	require.NoError(t, err)
	work, err := scope.AddQueryNode("work", mid.Location)
	require.NoError(t, err)

	timperley := stationNode(t, graph, "TIM")
	deansgate := stationNode(t, graph, "DEA")
	trip := "GREEN_OUT_0800"

	path := []*journeygraph.Edge{
		{Type: journeygraph.EdgeWalksTo, From: home.ID, To: timperley, Cost: 5},
		{Type: journeygraph.EdgeEnterPlatform, Cost: 0, StationRef: "TIM", PlatformRef: "TIM1"},
		{Type: journeygraph.EdgeBoard, Cost: 2, StationRef: "TIM", RouteRef: "ALTBURY", PlatformRef: "TIM1"},
		{Type: journeygraph.EdgeToService},
		{Type: journeygraph.EdgeToHour},
		{Type: journeygraph.EdgeToMinute, TripRef: trip, Time: ctdf.TimeOf(8, 5)},
		{Type: journeygraph.EdgeGoesTo, Cost: 12, StationRef: "CRN", TripRef: trip, Time: ctdf.TimeOf(8, 5)},
		{Type: journeygraph.EdgeToService},
		{Type: journeygraph.EdgeToHour},
		{Type: journeygraph.EdgeToMinute, TripRef: trip, Time: ctdf.TimeOf(8, 17)},
		{Type: journeygraph.EdgeGoesTo, Cost: 3, StationRef: "DEA", TripRef: trip, Time: ctdf.TimeOf(8, 17)},
		{Type: journeygraph.EdgeInterchangeDepart, Cost: 1, StationRef: "DEA", RouteRef: "ALTBURY", PlatformRef: "DEA1"},
		{Type: journeygraph.EdgeLeavePlatform, Cost: 0, StationRef: "DEA", PlatformRef: "DEA1"},
		{Type: journeygraph.EdgeWalksFrom, From: deansgate, To: mid.ID, Cost: 4},
		{Type: journeygraph.EdgeFinishWalk, From: mid.ID, To: work.ID},
	}

	stages, err := NewMapper(scope, repository).MapPathToStages(path, ctdf.TimeOf(8, 0))
	require.NoError(t, err)
	require.Len(t, stages, 3)

	walk := stages[0]
	assert.Equal(t, ctdf.StageTypeWalking, walk.Type)
	assert.Equal(t, "home", walk.Origin.Name)
	assert.False(t, walk.Origin.IsStation())
	assert.Equal(t, "TIM", walk.Destination.StationRef)
	assert.Equal(t, ctdf.TimeOf(7, 58), walk.FirstDepartureTime)
	assert.Equal(t, ctdf.TimeOf(8, 3), walk.ExpectedArrivalTime)
	assert.False(t, walk.TowardsMyLocation)

	ride := stages[1]
	assert.Equal(t, ctdf.StageTypeVehicle, ride.Type)
	assert.Equal(t, "TIM", ride.Origin.StationRef)
	assert.Equal(t, "DEA", ride.Destination.StationRef)
	assert.Equal(t, "TIM1", ride.PlatformRef)
	assert.Equal(t, "Bury", ride.Headsign)
	assert.Equal(t, ctdf.TimeOf(8, 5), ride.FirstDepartureTime)
	assert.Equal(t, ctdf.TimeOf(8, 20), ride.ExpectedArrivalTime)
	assert.Equal(t, 15, ride.Cost)
	assert.Equal(t, 1, ride.PassedStops)

	onwards := stages[2]
	assert.Equal(t, ctdf.StageTypeWalking, onwards.Type)
	assert.Equal(t, "DEA", onwards.Origin.StationRef)
	assert.Equal(t, "mid", onwards.Destination.Name)
	assert.Equal(t, ctdf.TimeOf(8, 21), onwards.FirstDepartureTime)
	assert.Equal(t, ctdf.TimeOf(8, 25), onwards.ExpectedArrivalTime)
	assert.True(t, onwards.TowardsMyLocation)
}

func TestMapDirectWalk(t *testing.T) {
	graph, repository := sample(t)

	scope := graph.NewQueryScope()
	defer scope.Close()

	home, err := scope.AddQueryNode("home", ctdf.LatLong{Latitude: 53.47, Longitude: -2.28})
	require.NoError(t, err)

	path := []*journeygraph.Edge{{Type: journeygraph.EdgeWalksTo, From: home.ID, To: stationNode(t, graph, "CRN"), Cost: 3}}

	stages, err := NewMapper(scope, repository).MapPathToStages(path, ctdf.TimeOf(9, 30))
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, ctdf.StageTypeWalking, stages[0].Type)
	assert.Equal(t, ctdf.TimeOf(9, 30), stages[0].FirstDepartureTime)
	assert.Equal(t, ctdf.TimeOf(9, 33), stages[0].ExpectedArrivalTime)
	assert.Equal(t, "Cornbrook", stages[0].Destination.Name)

	stages, err = NewMapper(scope, repository).MapPathToStages(nil, ctdf.TimeOf(9, 30))
	require.NoError(t, err)
	assert.Empty(t, stages)
}

func TestMapInvariantViolations(t *testing.T) {
	graph, repository := sample(t)
	mapper := NewMapper(graph, repository)

	_, err := mapper.MapPathToStages([]*journeygraph.Edge{
		{Type: journeygraph.EdgeEnterPlatform},
		{Type: journeygraph.EdgeOnRoute},
	}, ctdf.TimeOf(8, 0))
	assert.ErrorIs(t, err, ErrUnrecognizedPathEdge)
	assert.ErrorIs(t, err, journeygraph.ErrGraphInvariant)

	_, err = mapper.MapPathToStages([]*journeygraph.Edge{
		{Type: journeygraph.EdgeBoard, StationRef: "TIM", RouteRef: "ALTBURY"},
		{Type: journeygraph.EdgeToMinute, TripRef: "GREEN_OUT_0800", Time: ctdf.TimeOf(8, 5)},
		{Type: journeygraph.EdgeGoesTo, Cost: 12, TripRef: "GREEN_OUT_0800"},
		{Type: journeygraph.EdgeToMinute, TripRef: "GREEN_OUT_0812", Time: ctdf.TimeOf(8, 29)},
	}, ctdf.TimeOf(8, 0))
	assert.ErrorIs(t, err, journeygraph.ErrGraphInvariant)

	_, err = mapper.MapPathToStages([]*journeygraph.Edge{
		{Type: journeygraph.EdgeEnterPlatform},
		{Type: journeygraph.EdgeDepart, StationRef: "TIM"},
	}, ctdf.TimeOf(8, 0))
	assert.ErrorIs(t, err, journeygraph.ErrGraphInvariant)

	_, err = mapper.MapPathToStages([]*journeygraph.Edge{{Type: journeygraph.EdgeGoesTo}}, ctdf.TimeOf(8, 0))
	assert.ErrorIs(t, err, ErrUnrecognizedPathEdge)
}

const dwellNetwork = `
stations:
  - {id: A, name: Alpha, latitude: 53.40, longitude: -2.30, tram: true, platforms: [{code: "1"}]}
  - {id: B, name: Bravo, latitude: 53.41, longitude: -2.30, tram: true, platforms: [{code: "1"}]}
  - {id: C, name: Charlie, latitude: 53.42, longitude: -2.30, tram: true, platforms: [{code: "1"}]}
routes:
  - {id: R1, name: Alpha - Charlie, mode: Tram}
services:
  - {id: S1, route: R1, days: [Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday], start: "2024-01-01", end: "2024-12-31"}
trips:
  - id: T1
    service: S1
    route: R1
    calls:
      - {station: A, platform: "1", depart: "10:00"}
      - {station: B, platform: "1", arrive: "10:05", depart: "10:09"}
      - {station: C, platform: "1", arrive: "10:14"}
`

func TestMapStageIncludesDwellTime(t *testing.T) {
	repository, err := transportdata.LoadFromYAML([]byte(dwellNetwork))
	require.NoError(t, err)
	graph, err := journeygraph.Build(repository)
	require.NoError(t, err)

	queryTime := ctdf.TimeOf(9, 55)
	date := time.Date(2024, time.June, 4, 0, 0, 0, 0, time.Local)
	start := stationNode(t, graph, "A")
	end := stationNode(t, graph, "C")

	serviceHeuristics := heuristics.NewServiceHeuristics(date, queryTime, repository.ServicesRunningOn(date), []string{"C"},
		heuristics.Limits{MaxPathLength: 400, MaxJourneyDuration: 124, MaxChanges: 5, MaxWait: 25},
		reachability.BuildMatrix(graph, repository), heuristics.NewServiceReasons(zerolog.Nop()))
	states := traversal.NewStates(graph, []journeygraph.NodeID{end})

	path, err := traversal.NewBreadthFirst(graph, states, traversal.NewEvaluator(serviceHeuristics, states), start, queryTime).Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, path)

	journey, err := NewMapper(graph, repository).MapFoundPath(path)
	require.NoError(t, err)
	require.Len(t, journey.Stages, 1)

	// arrival follows the timetable, so the four minutes stood at Bravo count
	stage := journey.Stages[0]
	assert.Equal(t, ctdf.TimeOf(10, 0), stage.FirstDepartureTime)
	assert.Equal(t, ctdf.TimeOf(10, 14), stage.ExpectedArrivalTime)
	assert.Equal(t, 14, stage.Cost)
	assert.Equal(t, 1, stage.PassedStops)
}
