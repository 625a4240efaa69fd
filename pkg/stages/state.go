package stages

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

// mapperState folds over the edges of a path one at a time
type mapperState struct {
	mapper    *Mapper
	queryTime ctdf.TimeOfDay
	stages    []ctdf.Stage

	enterPlatformCost int
	leavePlatformCost int

	// current vehicle leg
	boardCost     int
	boardStation  string
	route         *ctdf.Route
	platformRef   string
	tripRef       string
	boardingTime  ctdf.TimeOfDay
	departureTime ctdf.TimeOfDay
	lastRunCost   int
	stopsSeen     int

	// end of the last vehicle leg
	arrived     bool
	arrivalTime ctdf.TimeOfDay
	departCost  int

	pendingWalk *journeygraph.Edge
}

func (s *mapperState) apply(edge *journeygraph.Edge) error {
	switch edge.Type {
	case journeygraph.EdgeBoard, journeygraph.EdgeInterchangeBoard:
		return s.board(edge)
	case journeygraph.EdgeDepart, journeygraph.EdgeInterchangeDepart:
		return s.depart(edge)
	case journeygraph.EdgeToMinute:
		return s.beginTrip(edge)
	case journeygraph.EdgeGoesTo:
		s.stopsSeen++
		s.lastRunCost = edge.Cost
		return nil
	case journeygraph.EdgeWalksTo:
		s.pendingWalk = edge
		return nil
	case journeygraph.EdgeWalksFrom:
		return s.walkTowardsMyLocation(edge)
	case journeygraph.EdgeEnterPlatform:
		s.enterPlatformCost = edge.Cost
		return nil
	case journeygraph.EdgeLeavePlatform:
		s.leavePlatformCost = edge.Cost
		return nil
	case journeygraph.EdgeToService, journeygraph.EdgeToHour, journeygraph.EdgeFinishWalk:
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnrecognizedPathEdge, edge)
}

func (s *mapperState) board(edge *journeygraph.Edge) error {
	route, err := s.mapper.repository.GetRoute(edge.RouteRef)
	if err != nil {
		return err
	}

	s.boardCost = edge.Cost
	s.boardStation = edge.StationRef
	s.route = route
	s.platformRef = ""
	if route.IsTram() {
		s.platformRef = edge.PlatformRef
	}
	s.tripRef = ""
	s.stopsSeen = 0
	s.lastRunCost = 0

	return nil
}

func (s *mapperState) beginTrip(edge *journeygraph.Edge) error {
	s.departureTime = edge.Time

	if s.tripRef != "" {
		if edge.TripRef != s.tripRef {
			return fmt.Errorf("%w: trip changed from %s to %s without alighting", journeygraph.ErrGraphInvariant, s.tripRef, edge.TripRef)
		}
		return nil
	}

	s.tripRef = edge.TripRef
	s.boardingTime = edge.Time

	if s.pendingWalk == nil {
		return nil
	}

	start := s.boardingTime.MinusMinutes(s.pendingWalk.Cost + s.boardCost + s.enterPlatformCost)
	if start.IsBefore(s.queryTime, s.queryTime.MinusMinutes(ctdf.MinutesPerDay/2)) {
		log.Warn().
			Str("walkstart", start.String()).
			Str("querytime", s.queryTime.String()).
			Str("trip", s.tripRef).
			Msg("Walk starts before the query time")
	}

	stage, err := s.mapper.walk(s.pendingWalk, start, false)
	if err != nil {
		return err
	}
	s.stages = append(s.stages, stage)
	s.pendingWalk = nil

	return nil
}

func (s *mapperState) depart(edge *journeygraph.Edge) error {
	if s.route == nil || s.tripRef == "" {
		return fmt.Errorf("%w: %s without boarding", journeygraph.ErrGraphInvariant, edge.Type)
	}

	origin, err := s.mapper.stationLocation(s.boardStation)
	if err != nil {
		return err
	}
	destination, err := s.mapper.stationLocation(edge.StationRef)
	if err != nil {
		return err
	}

	headsign := ""
	if trip, err := s.mapper.repository.GetTrip(s.tripRef); err == nil {
		headsign = trip.Headsign
	}

	arrival := s.departureTime.PlusMinutes(s.lastRunCost)

	s.stages = append(s.stages, ctdf.Stage{
		Type:                ctdf.StageTypeVehicle,
		Origin:              origin,
		Destination:         destination,
		RouteRef:            s.route.PrimaryIdentifier,
		TransportType:       s.route.TransportType,
		TripRef:             s.tripRef,
		PlatformRef:         s.platformRef,
		Headsign:            headsign,
		FirstDepartureTime:  s.boardingTime,
		ExpectedArrivalTime: arrival,
		Cost:                arrival.RelativeTo(s.boardingTime),
		PassedStops:         s.stopsSeen - 1,
	})

	s.arrived = true
	s.arrivalTime = arrival
	s.departCost = edge.Cost

	s.route = nil
	s.tripRef = ""
	s.stopsSeen = 0

	return nil
}

func (s *mapperState) walkTowardsMyLocation(edge *journeygraph.Edge) error {
	start := s.queryTime
	if s.arrived {
		start = s.arrivalTime.PlusMinutes(s.departCost + s.leavePlatformCost)
	}

	stage, err := s.mapper.walk(edge, start, true)
	if err != nil {
		return err
	}
	s.stages = append(s.stages, stage)

	return nil
}
