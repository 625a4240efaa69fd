package planner

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/config"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/plancache"
	"github.com/travigo/journeyplanner/pkg/routecalculator"
	"github.com/travigo/journeyplanner/pkg/spatial"
	"github.com/travigo/journeyplanner/pkg/util"
)

type Result struct {
	Request  Request
	Journeys []*ctdf.RawJourney

	// Diagnostics counts why candidate services were rejected, only set when nothing was found
	Diagnostics map[string]int `json:",omitempty"`
	Cached      bool
}

// Planner turns plan requests into journeys using whichever search suits the endpoints
type Planner struct {
	calculator *routecalculator.RouteCalculator
	locations  *routecalculator.LocationPlanner
	cache      *plancache.Cache
}

func New(calculator *routecalculator.RouteCalculator, index *spatial.StationIndex) *Planner {
	return &Planner{
		calculator: calculator,
		locations:  routecalculator.NewLocationPlanner(calculator, index),
	}
}

func (p *Planner) WithCache(cache *plancache.Cache) *Planner {
	p.cache = cache
	return p
}

func (p *Planner) Plan(ctx context.Context, request Request) (*Result, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	request.Date = util.StartOfDay(request.Date)

	cfg := p.calculator.Config()
	calculator := p.calculator
	locations := p.locations
	if request.MaxChanges != nil && *request.MaxChanges != cfg.MaxChanges {
		cfg.MaxChanges = *request.MaxChanges
		calculator = calculator.WithConfig(cfg)
		locations = locations.WithCalculator(calculator)
	}

	key := request.Key(cfg)
	if p.cache != nil {
		if entry, found := p.cache.Get(ctx, key); found {
			log.Debug().Str("request", request.String()).Msg("Plan served from cache")
			return &Result{Request: request, Journeys: entry.Journeys, Diagnostics: entry.Diagnostics, Cached: true}, nil
		}
	}

	stream, err := p.stream(ctx, calculator, locations, request, cfg)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var journeys []*ctdf.RawJourney
	for len(journeys) < cfg.MaxNumResults && stream.Next(ctx) {
		journeys = append(journeys, stream.Current())
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}

	journeys = ctdf.FilterIdenticalJourneys(journeys)
	SortJourneys(journeys)

	result := &Result{Request: request, Journeys: journeys}
	if len(journeys) == 0 && stream.Reasons() != nil {
		result.Diagnostics = stream.Reasons().Summary()
	}

	log.Info().
		Str("request", request.String()).
		Int("journeys", len(journeys)).
		Msg("Planned journey")

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, plancache.Entry{Journeys: journeys, Diagnostics: result.Diagnostics}); err != nil {
			log.Warn().Err(err).Msg("Failed to cache plan")
		}
	}

	return result, nil
}

func (p *Planner) stream(ctx context.Context, calculator *routecalculator.RouteCalculator, locations *routecalculator.LocationPlanner, request Request, cfg config.Config) (*routecalculator.JourneyStream, error) {
	from := request.From
	to := request.To

	switch {
	case from.IsLocation() && to.IsLocation():
		return locations.BetweenLocations(ctx, *from.Location, *to.Location, request.Time, request.Date, request.ArriveBy)
	case from.IsLocation():
		return locations.FromLocation(ctx, *from.Location, to.StationRef, request.Time, request.Date, request.ArriveBy)
	case to.IsLocation():
		return locations.ToLocation(ctx, from.StationRef, *to.Location, request.Time, request.Date, request.ArriveBy)
	case request.ArriveBy:
		return calculator.CalculateRouteArriveBy(ctx, from.StationRef, to.StationRef, request.Time, request.Date)
	}

	queryTimes := routecalculator.QueryTimes(request.Time, cfg)

	return calculator.CalculateRoute(ctx, from.StationRef, to.StationRef, queryTimes, request.Date, cfg.MaxNumResults)
}

// SortJourneys orders by earliest arrival, then earliest departure, then fewest stages
func SortJourneys(journeys []*ctdf.RawJourney) {
	dayStart := journeygraph.ServiceDayStart

	sort.SliceStable(journeys, func(i, j int) bool {
		a := journeys[i]
		b := journeys[j]

		if a.ArrivalTime() != b.ArrivalTime() {
			return a.ArrivalTime().IsBefore(b.ArrivalTime(), dayStart)
		}
		if a.DepartureTime() != b.DepartureTime() {
			return a.DepartureTime().IsBefore(b.DepartureTime(), dayStart)
		}

		return len(a.Stages) < len(b.Stages)
	})
}
