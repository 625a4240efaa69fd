package journeygraph

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/transportdata"
)

const (
	BoardCost             = 2
	InterchangeBoardCost  = 1
	DepartCost            = 1
	InterchangeDepartCost = 1
	EnterPlatformCost     = 0
	LeavePlatformCost     = 0
)

// ServiceDayStart is where the running day rolls over, departures before it
// belong to the end of the previous day's service
var ServiceDayStart = ctdf.TimeOf(3, 0)

type serviceKey struct {
	routeStation NodeID
	serviceRef   string
}

type hourKey struct {
	service NodeID
	hour    int
}

type minuteKey struct {
	hour NodeID
	time ctdf.TimeOfDay
}

type onRouteKey struct {
	from NodeID
	to   NodeID
}

// Builder turns the transport data into a Graph. Input is read in identifier
// order so the same network always produces the same node ids.
type Builder struct {
	repository transportdata.Repository
	graph      *Graph
	built      bool

	serviceNodes map[serviceKey]*Node
	hourNodes    map[hourKey]*Node
	minuteNodes  map[minuteKey]*Node
	toMinute     map[string]bool
	onRoute      map[onRouteKey]*Edge
}

func NewBuilder(repository transportdata.Repository) *Builder {
	return &Builder{
		repository:   repository,
		graph:        newGraph(),
		serviceNodes: map[serviceKey]*Node{},
		hourNodes:    map[hourKey]*Node{},
		minuteNodes:  map[minuteKey]*Node{},
		toMinute:     map[string]bool{},
		onRoute:      map[onRouteKey]*Edge{},
	}
}

// Build populates the graph, later calls do nothing
func (b *Builder) Build() error {
	if b.built {
		return nil
	}

	if err := b.buildStations(); err != nil {
		return err
	}
	if err := b.buildRouteStations(); err != nil {
		return err
	}
	if err := b.buildTrips(); err != nil {
		return err
	}
	b.buildOnRoute()

	b.built = true

	log.Info().
		Int("nodes", b.graph.NodeCount()).
		Int("edges", b.graph.EdgeCount()).
		Int("stations", len(b.graph.NodesOfKind(KindStation))).
		Int("routestations", len(b.graph.NodesOfKind(KindRouteStation))).
		Int("minutes", len(b.graph.NodesOfKind(KindMinute))).
		Msg("Built journey graph")

	return nil
}

// Freeze hands over the finished graph
func (b *Builder) Freeze() (*Graph, error) {
	if !b.built {
		return nil, fmt.Errorf("%w: graph frozen before it was built", ErrGraphInvariant)
	}

	return b.graph, nil
}

// Build is the usual one step construction of a graph from a repository
func Build(repository transportdata.Repository) (*Graph, error) {
	builder := NewBuilder(repository)
	if err := builder.Build(); err != nil {
		return nil, err
	}

	return builder.Freeze()
}

func (b *Builder) buildStations() error {
	for _, station := range b.repository.Stations() {
		stationNode := b.graph.addNode(&Node{
			Kind:       KindStation,
			Name:       station.PrimaryName,
			StationRef: station.PrimaryIdentifier,
			Location:   station.Location,
		})

		platformRefs := station.Platforms
		if len(platformRefs) == 0 {
			platformRefs = []string{station.PrimaryIdentifier}
		}

		for _, platformRef := range platformRefs {
			name := station.PrimaryName
			if platformRef != station.PrimaryIdentifier {
				platform, err := b.repository.GetPlatform(platformRef)
				if err != nil {
					return err
				}
				name = platform.PrimaryName
			}

			platformNode := b.graph.addNode(&Node{
				Kind:        KindPlatform,
				Name:        name,
				StationRef:  station.PrimaryIdentifier,
				PlatformRef: platformRef,
				Location:    station.Location,
			})

			b.graph.addEdge(&Edge{
				Type:        EdgeEnterPlatform,
				From:        stationNode.ID,
				To:          platformNode.ID,
				Cost:        EnterPlatformCost,
				StationRef:  station.PrimaryIdentifier,
				PlatformRef: platformRef,
			})
			b.graph.addEdge(&Edge{
				Type:        EdgeLeavePlatform,
				From:        platformNode.ID,
				To:          stationNode.ID,
				Cost:        LeavePlatformCost,
				StationRef:  station.PrimaryIdentifier,
				PlatformRef: platformRef,
			})
		}
	}

	return nil
}

func (b *Builder) buildRouteStations() error {
	for _, routeStation := range b.repository.RouteStations() {
		station, err := b.repository.GetStation(routeStation.StationRef)
		if err != nil {
			return err
		}

		routeStationNode := b.graph.addNode(&Node{
			Kind:       KindRouteStation,
			Name:       station.PrimaryName,
			StationRef: routeStation.StationRef,
			RouteRef:   routeStation.RouteRef,
			Location:   station.Location,
		})

		boardType, boardCost := EdgeBoard, BoardCost
		departType, departCost := EdgeDepart, DepartCost
		if station.IsInterchange {
			boardType, boardCost = EdgeInterchangeBoard, InterchangeBoardCost
			departType, departCost = EdgeInterchangeDepart, InterchangeDepartCost
		}

		for _, platformRef := range b.platformsServing(station, routeStation.RouteRef) {
			platformNode, err := b.graph.PlatformNode(platformRef)
			if err != nil {
				return err
			}

			b.graph.addEdge(&Edge{
				Type:        boardType,
				From:        platformNode,
				To:          routeStationNode.ID,
				Cost:        boardCost,
				StationRef:  station.PrimaryIdentifier,
				RouteRef:    routeStation.RouteRef,
				PlatformRef: platformRef,
			})
			b.graph.addEdge(&Edge{
				Type:        departType,
				From:        routeStationNode.ID,
				To:          platformNode,
				Cost:        departCost,
				StationRef:  station.PrimaryIdentifier,
				RouteRef:    routeStation.RouteRef,
				PlatformRef: platformRef,
			})
		}
	}

	return nil
}

// platformsServing falls back to every platform at the station when none are
// recorded against the route
func (b *Builder) platformsServing(station *ctdf.Station, routeRef string) []string {
	if len(station.Platforms) == 0 {
		return []string{station.PrimaryIdentifier}
	}

	var serving []string
	for _, platformRef := range station.Platforms {
		platform, err := b.repository.GetPlatform(platformRef)
		if err != nil {
			continue
		}
		for _, route := range platform.Routes {
			if route == routeRef {
				serving = append(serving, platformRef)
				break
			}
		}
	}

	if len(serving) == 0 {
		return station.Platforms
	}

	return serving
}

func (b *Builder) buildTrips() error {
	for _, trip := range b.repository.Trips() {
		calls := trip.CallsInSequence()

		for i := 0; i < len(calls)-1; i++ {
			call := calls[i]
			next := calls[i+1]

			from, err := b.graph.RouteStationNode(ctdf.RouteStationIdentifier(trip.RouteRef, call.StationRef))
			if err != nil {
				return err
			}
			to, err := b.graph.RouteStationNode(ctdf.RouteStationIdentifier(trip.RouteRef, next.StationRef))
			if err != nil {
				return err
			}

			cost := next.ArrivalTime.RelativeTo(call.DepartureTime)

			minuteNode := b.minuteNodeFor(from, trip, call)

			b.graph.addEdge(&Edge{
				Type:       EdgeGoesTo,
				From:       minuteNode.ID,
				To:         to,
				Cost:       cost,
				StationRef: next.StationRef,
				RouteRef:   trip.RouteRef,
				ServiceRef: trip.ServiceRef,
				TripRef:    trip.PrimaryIdentifier,
				Time:       call.DepartureTime,
			})

			b.recordOnRoute(from, to, trip.RouteRef, cost)
		}
	}

	return nil
}

func (b *Builder) minuteNodeFor(routeStation NodeID, trip *ctdf.Trip, call ctdf.StopCall) *Node {
	routeStationNode := b.graph.nodes[routeStation-1]

	serviceNode, exists := b.serviceNodes[serviceKey{routeStation, trip.ServiceRef}]
	if !exists {
		serviceNode = b.graph.addNode(&Node{
			Kind:              KindService,
			StationRef:        routeStationNode.StationRef,
			RouteRef:          routeStationNode.RouteRef,
			ServiceRef:        trip.ServiceRef,
			EarliestDeparture: call.DepartureTime,
			LatestDeparture:   call.DepartureTime,
		})
		b.serviceNodes[serviceKey{routeStation, trip.ServiceRef}] = serviceNode

		b.graph.addEdge(&Edge{
			Type:       EdgeToService,
			From:       routeStation,
			To:         serviceNode.ID,
			StationRef: routeStationNode.StationRef,
			RouteRef:   routeStationNode.RouteRef,
			ServiceRef: trip.ServiceRef,
		})
	}
	if call.DepartureTime.IsBefore(serviceNode.EarliestDeparture, ServiceDayStart) {
		serviceNode.EarliestDeparture = call.DepartureTime
	}
	if call.DepartureTime.IsAfter(serviceNode.LatestDeparture, ServiceDayStart) {
		serviceNode.LatestDeparture = call.DepartureTime
	}

	hour := call.DepartureTime.Hour()
	hourNode, exists := b.hourNodes[hourKey{serviceNode.ID, hour}]
	if !exists {
		hourNode = b.graph.addNode(&Node{
			Kind:       KindHour,
			StationRef: routeStationNode.StationRef,
			RouteRef:   routeStationNode.RouteRef,
			ServiceRef: trip.ServiceRef,
			Hour:       hour,
		})
		b.hourNodes[hourKey{serviceNode.ID, hour}] = hourNode

		b.graph.addEdge(&Edge{
			Type:       EdgeToHour,
			From:       serviceNode.ID,
			To:         hourNode.ID,
			StationRef: routeStationNode.StationRef,
			RouteRef:   routeStationNode.RouteRef,
			ServiceRef: trip.ServiceRef,
		})
	}

	minuteNode, exists := b.minuteNodes[minuteKey{hourNode.ID, call.DepartureTime}]
	if !exists {
		minuteNode = b.graph.addNode(&Node{
			Kind:       KindMinute,
			StationRef: routeStationNode.StationRef,
			RouteRef:   routeStationNode.RouteRef,
			ServiceRef: trip.ServiceRef,
			Hour:       hour,
			Time:       call.DepartureTime,
		})
		b.minuteNodes[minuteKey{hourNode.ID, call.DepartureTime}] = minuteNode
	}

	toMinuteKey := fmt.Sprintf("%d:%s", minuteNode.ID, trip.PrimaryIdentifier)
	if !b.toMinute[toMinuteKey] {
		b.toMinute[toMinuteKey] = true

		b.graph.addEdge(&Edge{
			Type:       EdgeToMinute,
			From:       hourNode.ID,
			To:         minuteNode.ID,
			StationRef: routeStationNode.StationRef,
			RouteRef:   routeStationNode.RouteRef,
			ServiceRef: trip.ServiceRef,
			TripRef:    trip.PrimaryIdentifier,
			Time:       call.DepartureTime,
		})
	}

	return minuteNode
}

func (b *Builder) recordOnRoute(from NodeID, to NodeID, routeRef string, cost int) {
	key := onRouteKey{from, to}

	existing, exists := b.onRoute[key]
	if !exists {
		b.onRoute[key] = &Edge{
			Type:     EdgeOnRoute,
			From:     from,
			To:       to,
			Cost:     cost,
			RouteRef: routeRef,
		}
		return
	}

	if cost < existing.Cost {
		existing.Cost = cost
	}
}

func (b *Builder) buildOnRoute() {
	keys := make([]onRouteKey, 0, len(b.onRoute))
	for key := range b.onRoute {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})

	for _, key := range keys {
		b.graph.addEdge(b.onRoute[key])
	}
}
