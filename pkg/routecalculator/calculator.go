package routecalculator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/heuristics"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/stages"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/travigo/journeyplanner/pkg/traversal"
)

// RouteCalculator searches the graph for journeys between stations. The graph,
// repository and matrix are shared between every query.
type RouteCalculator struct {
	graph      *journeygraph.Graph
	repository transportdata.Repository
	matrix     *reachability.Matrix
	config     config.Config
}

func NewRouteCalculator(graph *journeygraph.Graph, repository transportdata.Repository, matrix *reachability.Matrix, cfg config.Config) *RouteCalculator {
	return &RouteCalculator{
		graph:      graph,
		repository: repository,
		matrix:     matrix,
		config:     cfg,
	}
}

// WithConfig shares everything but the limits
func (r *RouteCalculator) WithConfig(cfg config.Config) *RouteCalculator {
	return &RouteCalculator{
		graph:      r.graph,
		repository: r.repository,
		matrix:     r.matrix,
		config:     cfg,
	}
}

func (r *RouteCalculator) Config() config.Config {
	return r.config
}

func (r *RouteCalculator) Graph() *journeygraph.Graph {
	return r.graph
}

func (r *RouteCalculator) Repository() transportdata.Repository {
	return r.repository
}

func (r *RouteCalculator) stationNode(stationRef string) (journeygraph.NodeID, error) {
	if _, err := r.repository.GetStation(stationRef); err != nil {
		return 0, err
	}

	return r.graph.StationNode(stationRef)
}

// CalculateRoute searches from each of queryTimes in turn, keeping up to limit
// paths from each and dropping journeys already found from an earlier time
func (r *RouteCalculator) CalculateRoute(ctx context.Context, startRef string, endRef string, queryTimes []ctdf.TimeOfDay, date time.Time, limit int) (*JourneyStream, error) {
	start, err := r.stationNode(startRef)
	if err != nil {
		return nil, err
	}
	end, err := r.stationNode(endRef)
	if err != nil {
		return nil, err
	}

	return r.search(ctx, r.graph, start, []journeygraph.NodeID{end}, []string{endRef}, queryTimes, date, limit), nil
}

// CalculateRouteArriveBy is an approximation, it departs early enough that the
// cheapest possible route would arrive by arriveBy with half the maximum wait
// to spare and then searches forwards. Journeys may arrive earlier than asked.
func (r *RouteCalculator) CalculateRouteArriveBy(ctx context.Context, startRef string, endRef string, arriveBy ctdf.TimeOfDay, date time.Time) (*JourneyStream, error) {
	start, err := r.stationNode(startRef)
	if err != nil {
		return nil, err
	}
	end, err := r.stationNode(endRef)
	if err != nil {
		return nil, err
	}

	departAfter, err := r.departAfter(r.graph, start, end, arriveBy)
	if errors.Is(err, reachability.ErrNoRoute) {
		log.Info().Str("start", startRef).Str("end", endRef).Msg("No route between stations for arrive by query")
		return EmptyStream(), nil
	}
	if err != nil {
		return nil, err
	}

	return r.search(ctx, r.graph, start, []journeygraph.NodeID{end}, []string{endRef}, QueryTimes(departAfter, r.config), date, r.config.MaxNumResults), nil
}

func (r *RouteCalculator) departAfter(view journeygraph.View, start journeygraph.NodeID, end journeygraph.NodeID, arriveBy ctdf.TimeOfDay) (ctdf.TimeOfDay, error) {
	cost, err := reachability.ApproxCostBetween(view, start, end)
	if err != nil {
		return ctdf.TimeOfDay{}, err
	}

	return arriveBy.MinusMinutes(cost + r.config.MaxWait/2), nil
}

func (r *RouteCalculator) limits() heuristics.Limits {
	return heuristics.Limits{
		MaxPathLength:      r.config.MaxPathLength,
		MaxJourneyDuration: r.config.MaxJourneyDuration,
		MaxChanges:         r.config.MaxChanges,
		MaxWait:            r.config.MaxWait,
	}
}

func (r *RouteCalculator) search(ctx context.Context, view journeygraph.View, start journeygraph.NodeID, destinations []journeygraph.NodeID, destinationStations []string, queryTimes []ctdf.TimeOfDay, date time.Time, limit int) *JourneyStream {
	logger := log.With().Str("request", uuid.NewString()).Logger()

	logger.Debug().
		Int64("start", int64(start)).
		Strs("destinations", destinationStations).
		Str("date", date.Format(time.DateOnly)).
		Int("querytimes", len(queryTimes)).
		Bool("edgepertrip", r.config.EdgePerTrip).
		Msg("Calculating route")

	reasons := heuristics.NewServiceReasons(logger)

	s := &search{
		calculator:          r,
		view:                view,
		mapper:              stages.NewMapper(view, r.repository),
		logger:              logger,
		start:               start,
		destinations:        destinations,
		destinationStations: destinationStations,
		queryTimes:          queryTimes,
		date:                date,
		running:             r.repository.ServicesRunningOn(date),
		limit:               limit,
		reasons:             reasons,
		seen:                map[string]bool{},
	}

	return newJourneyStream(s.next, reasons)
}

type search struct {
	calculator *RouteCalculator
	view       journeygraph.View
	mapper     *stages.Mapper
	logger     zerolog.Logger

	start               journeygraph.NodeID
	destinations        []journeygraph.NodeID
	destinationStations []string
	queryTimes          []ctdf.TimeOfDay
	date                time.Time
	running             map[string]bool
	limit               int

	reasons *heuristics.ServiceReasons
	seen    map[string]bool

	timeIndex    int
	iterator     traversal.PathIterator
	foundForTime int
}

func (s *search) iteratorFor(queryTime ctdf.TimeOfDay) traversal.PathIterator {
	serviceHeuristics := heuristics.NewServiceHeuristics(
		s.date,
		queryTime,
		s.running,
		s.destinationStations,
		s.calculator.limits(),
		s.calculator.matrix,
		s.reasons,
	)
	states := traversal.NewStates(s.view, s.destinations)
	evaluator := traversal.NewEvaluator(serviceHeuristics, states)

	if s.calculator.config.EdgePerTrip {
		return traversal.NewBreadthFirst(s.view, states, evaluator, s.start, queryTime)
	}

	return traversal.NewShortestPaths(s.view, states, evaluator, s.start, queryTime, s.limit)
}

func (s *search) next(ctx context.Context) (*ctdf.RawJourney, error) {
	for {
		if s.iterator == nil {
			if s.timeIndex >= len(s.queryTimes) {
				return nil, nil
			}

			s.iterator = s.iteratorFor(s.queryTimes[s.timeIndex])
			s.timeIndex++
			s.foundForTime = 0
		}

		if s.limit > 0 && s.foundForTime >= s.limit {
			s.iterator = nil
			continue
		}

		path, err := s.iterator.Next(ctx)
		if err != nil {
			return nil, err
		}
		if path == nil {
			s.iterator = nil
			continue
		}
		s.foundForTime++

		journey, err := s.mapper.MapFoundPath(path)
		if err != nil {
			return nil, err
		}

		hash := journey.GenerateFunctionalHash()
		if s.seen[hash] {
			continue
		}
		s.seen[hash] = true

		s.logger.Debug().
			Str("querytime", path.QueryTime.String()).
			Str("departure", journey.DepartureTime().String()).
			Str("arrival", journey.ArrivalTime().String()).
			Int("stages", len(journey.Stages)).
			Msg("Found journey")

		return journey, nil
	}
}
