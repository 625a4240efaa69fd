package routecalculator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/spatial"
)

const queryNodeName = "My Location"

// LocationPlanner plans journeys that start or finish at an arbitrary point by
// walking to or from the nearest stations
type LocationPlanner struct {
	calculator *RouteCalculator
	index      *spatial.StationIndex
}

func NewLocationPlanner(calculator *RouteCalculator, index *spatial.StationIndex) *LocationPlanner {
	return &LocationPlanner{
		calculator: calculator,
		index:      index,
	}
}

func (p *LocationPlanner) WithCalculator(calculator *RouteCalculator) *LocationPlanner {
	return &LocationPlanner{
		calculator: calculator,
		index:      p.index,
	}
}

func (p *LocationPlanner) nearest(location ctdf.LatLong) []spatial.StationWalk {
	cfg := p.calculator.config

	return p.index.Nearest(location, cfg.NumOfNearestStopsForWalking, cfg.NearestStopRangeKM, cfg.WalkingMPH)
}

// FromLocation walks from origin to one of the nearby stations and travels on to endRef
func (p *LocationPlanner) FromLocation(ctx context.Context, origin ctdf.LatLong, endRef string, queryTime ctdf.TimeOfDay, date time.Time, arriveBy bool) (*JourneyStream, error) {
	end, err := p.calculator.stationNode(endRef)
	if err != nil {
		return nil, err
	}

	walks := p.nearest(origin)
	if len(walks) == 0 {
		log.Info().Str("location", origin.String()).Msg("No stations within walking distance of start")
		return EmptyStream(), nil
	}

	scope := p.calculator.graph.NewQueryScope()

	start, err := p.walkFrom(scope, origin, walks)
	if err != nil {
		closeScope(scope)
		return nil, err
	}

	return p.plan(ctx, scope, start, end, []string{endRef}, queryTime, date, arriveBy, len(walks))
}

// ToLocation travels from startRef to one of the stations near destination and walks the rest of the way
func (p *LocationPlanner) ToLocation(ctx context.Context, startRef string, destination ctdf.LatLong, queryTime ctdf.TimeOfDay, date time.Time, arriveBy bool) (*JourneyStream, error) {
	start, err := p.calculator.stationNode(startRef)
	if err != nil {
		return nil, err
	}

	walks := p.nearest(destination)
	if len(walks) == 0 {
		log.Info().Str("location", destination.String()).Msg("No stations within walking distance of destination")
		return EmptyStream(), nil
	}

	scope := p.calculator.graph.NewQueryScope()

	end, err := p.walkTo(scope, destination, walks)
	if err != nil {
		closeScope(scope)
		return nil, err
	}

	return p.plan(ctx, scope, start, end, stationRefs(walks), queryTime, date, arriveBy, len(walks))
}

// BetweenLocations walks at both ends. When the two points are close enough a
// direct walk between them is offered too.
func (p *LocationPlanner) BetweenLocations(ctx context.Context, origin ctdf.LatLong, destination ctdf.LatLong, queryTime ctdf.TimeOfDay, date time.Time, arriveBy bool) (*JourneyStream, error) {
	startWalks := p.nearest(origin)
	endWalks := p.nearest(destination)

	cfg := p.calculator.config
	direct := origin.DistanceKM(destination) <= cfg.NearestStopRangeKM

	if !direct && (len(startWalks) == 0 || len(endWalks) == 0) {
		log.Info().
			Str("origin", origin.String()).
			Str("destination", destination.String()).
			Msg("No stations within walking distance")
		return EmptyStream(), nil
	}

	scope := p.calculator.graph.NewQueryScope()

	start, err := p.walkFrom(scope, origin, startWalks)
	if err != nil {
		closeScope(scope)
		return nil, err
	}
	end, err := p.walkTo(scope, destination, endWalks)
	if err != nil {
		closeScope(scope)
		return nil, err
	}

	if direct {
		_, err := scope.AddEdge(journeygraph.Edge{
			Type: journeygraph.EdgeWalksTo,
			From: start,
			To:   end,
			Cost: origin.WalkingMinutes(destination, cfg.WalkingMPH),
		})
		if err != nil {
			closeScope(scope)
			return nil, err
		}
	}

	walks := len(startWalks) * len(endWalks)
	if walks == 0 {
		walks = 1
	}

	return p.plan(ctx, scope, start, end, stationRefs(endWalks), queryTime, date, arriveBy, walks)
}

// walkFrom adds the query node for origin with a WALKS_TO edge to each station
func (p *LocationPlanner) walkFrom(scope *journeygraph.QueryScope, origin ctdf.LatLong, walks []spatial.StationWalk) (journeygraph.NodeID, error) {
	node, err := scope.AddQueryNode(queryNodeName, origin)
	if err != nil {
		return 0, err
	}

	for _, walk := range walks {
		station, err := scope.StationNode(walk.Station.PrimaryIdentifier)
		if err != nil {
			return 0, err
		}

		log.Debug().
			Str("station", walk.Station.PrimaryIdentifier).
			Int("cost", walk.Cost).
			Msg("Adding walk to station")

		_, err = scope.AddEdge(journeygraph.Edge{
			Type:       journeygraph.EdgeWalksTo,
			From:       node.ID,
			To:         station,
			Cost:       walk.Cost,
			StationRef: walk.Station.PrimaryIdentifier,
		})
		if err != nil {
			return 0, err
		}
	}

	return node.ID, nil
}

// walkTo adds a WALKS_FROM edge out of each station to its own walking node,
// all of which finish at a single end node
func (p *LocationPlanner) walkTo(scope *journeygraph.QueryScope, destination ctdf.LatLong, walks []spatial.StationWalk) (journeygraph.NodeID, error) {
	end, err := scope.AddQueryNode(queryNodeName, destination)
	if err != nil {
		return 0, err
	}

	for _, walk := range walks {
		station, err := scope.StationNode(walk.Station.PrimaryIdentifier)
		if err != nil {
			return 0, err
		}

		mid, err := scope.AddQueryNode(queryNodeName, destination)
		if err != nil {
			return 0, err
		}

		log.Debug().
			Str("station", walk.Station.PrimaryIdentifier).
			Int("cost", walk.Cost).
			Msg("Adding walk from station")

		_, err = scope.AddEdge(journeygraph.Edge{
			Type:       journeygraph.EdgeWalksFrom,
			From:       station,
			To:         mid.ID,
			Cost:       walk.Cost,
			StationRef: walk.Station.PrimaryIdentifier,
		})
		if err != nil {
			return 0, err
		}

		_, err = scope.AddEdge(journeygraph.Edge{
			Type: journeygraph.EdgeFinishWalk,
			From: mid.ID,
			To:   end.ID,
		})
		if err != nil {
			return 0, err
		}
	}

	return end.ID, nil
}

func (p *LocationPlanner) plan(ctx context.Context, scope *journeygraph.QueryScope, start journeygraph.NodeID, end journeygraph.NodeID, destinationStations []string, queryTime ctdf.TimeOfDay, date time.Time, arriveBy bool, walks int) (*JourneyStream, error) {
	calculator := p.calculator
	queryTimes := QueryTimes(queryTime, calculator.config)

	if arriveBy {
		departAfter, err := calculator.departAfter(scope, start, end, queryTime)
		if errors.Is(err, reachability.ErrNoRoute) {
			closeScope(scope)
			return EmptyStream(), nil
		}
		if err != nil {
			closeScope(scope)
			return nil, err
		}
		queryTimes = QueryTimes(departAfter, calculator.config)
	}

	stream := calculator.search(ctx, scope, start, []journeygraph.NodeID{end}, destinationStations, queryTimes, date, calculator.config.MaxNumResults*walks)
	stream.OnClose(func() {
		closeScope(scope)
	})

	return stream, nil
}

func closeScope(scope *journeygraph.QueryScope) {
	if err := scope.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to release query nodes")
	}
}

func stationRefs(walks []spatial.StationWalk) []string {
	refs := make([]string, 0, len(walks))
	for _, walk := range walks {
		refs = append(refs, walk.Station.PrimaryIdentifier)
	}

	return refs
}
