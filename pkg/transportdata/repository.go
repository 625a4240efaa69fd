package transportdata

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownStation      = errors.New("unknown station")
	ErrUnknownRoute        = errors.New("unknown route")
	ErrUnknownTrip         = errors.New("unknown trip")
	ErrUnknownService      = errors.New("unknown service")
	ErrUnknownPlatform     = errors.New("unknown platform")
	ErrUnknownRouteStation = errors.New("unknown route station")
)

// Repository is the read side of the network used while planning
type Repository interface {
	GetStation(id string) (*ctdf.Station, error)
	GetPlatform(id string) (*ctdf.Platform, error)
	GetRoute(id string) (*ctdf.Route, error)
	GetTrip(id string) (*ctdf.Trip, error)
	GetService(id string) (*ctdf.Service, error)
	GetRouteStation(id string) (ctdf.RouteStation, error)

	ServicesRunningOn(date time.Time) map[string]bool

	Stations() []*ctdf.Station
	Routes() []*ctdf.Route
	Trips() []*ctdf.Trip
	RouteStations() []ctdf.RouteStation
}

// Memory is an id keyed arena of the network. Add everything then call Finalise
// before handing it to anything that reads it.
type Memory struct {
	stations      map[string]*ctdf.Station
	platforms     map[string]*ctdf.Platform
	routes        map[string]*ctdf.Route
	services      map[string]*ctdf.Service
	trips         map[string]*ctdf.Trip
	routeStations map[string]ctdf.RouteStation
}

func NewMemory() *Memory {
	return &Memory{
		stations:      map[string]*ctdf.Station{},
		platforms:     map[string]*ctdf.Platform{},
		routes:        map[string]*ctdf.Route{},
		services:      map[string]*ctdf.Service{},
		trips:         map[string]*ctdf.Trip{},
		routeStations: map[string]ctdf.RouteStation{},
	}
}

func (m *Memory) AddStation(station *ctdf.Station) {
	m.stations[station.PrimaryIdentifier] = station
}

func (m *Memory) AddPlatform(platform *ctdf.Platform) {
	m.platforms[platform.PrimaryIdentifier] = platform
}

func (m *Memory) AddRoute(route *ctdf.Route) {
	m.routes[route.PrimaryIdentifier] = route
}

func (m *Memory) AddService(service *ctdf.Service) {
	m.services[service.PrimaryIdentifier] = service
}

func (m *Memory) AddTrip(trip *ctdf.Trip) {
	m.trips[trip.PrimaryIdentifier] = trip
}

// Finalise checks every reference resolves and derives the route stations along
// with the routes serving each station and platform
func (m *Memory) Finalise() error {
	for _, trip := range m.Trips() {
		if _, exists := m.routes[trip.RouteRef]; !exists {
			return fmt.Errorf("trip %s: %w %s", trip.PrimaryIdentifier, ErrUnknownRoute, trip.RouteRef)
		}
		if _, exists := m.services[trip.ServiceRef]; !exists {
			return fmt.Errorf("trip %s: %w %s", trip.PrimaryIdentifier, ErrUnknownService, trip.ServiceRef)
		}

		for _, call := range trip.StopCalls {
			station, exists := m.stations[call.StationRef]
			if !exists {
				return fmt.Errorf("trip %s: %w %s", trip.PrimaryIdentifier, ErrUnknownStation, call.StationRef)
			}

			routeStation := ctdf.RouteStation{RouteRef: trip.RouteRef, StationRef: call.StationRef}
			m.routeStations[routeStation.Identifier()] = routeStation

			if !station.ServesRoute(trip.RouteRef) {
				station.Routes = append(station.Routes, trip.RouteRef)
			}

			if call.PlatformRef == "" {
				continue
			}
			platform, exists := m.platforms[call.PlatformRef]
			if !exists {
				return fmt.Errorf("trip %s: %w %s", trip.PrimaryIdentifier, ErrUnknownPlatform, call.PlatformRef)
			}
			if platform.StationRef != call.StationRef {
				return fmt.Errorf("trip %s: platform %s is not at station %s", trip.PrimaryIdentifier, call.PlatformRef, call.StationRef)
			}
			if !slices.Contains(platform.Routes, trip.RouteRef) {
				platform.Routes = append(platform.Routes, trip.RouteRef)
			}
		}
	}

	for _, platform := range m.platforms {
		station, exists := m.stations[platform.StationRef]
		if !exists {
			return fmt.Errorf("platform %s: %w %s", platform.PrimaryIdentifier, ErrUnknownStation, platform.StationRef)
		}
		if !slices.Contains(station.Platforms, platform.PrimaryIdentifier) {
			station.Platforms = append(station.Platforms, platform.PrimaryIdentifier)
		}
	}

	for _, station := range m.stations {
		sort.Strings(station.Routes)
		sort.Strings(station.Platforms)
	}
	for _, platform := range m.platforms {
		sort.Strings(platform.Routes)
	}

	return nil
}

func (m *Memory) GetStation(id string) (*ctdf.Station, error) {
	station, exists := m.stations[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStation, id)
	}

	return station, nil
}

func (m *Memory) GetPlatform(id string) (*ctdf.Platform, error) {
	platform, exists := m.platforms[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, id)
	}

	return platform, nil
}

func (m *Memory) GetRoute(id string) (*ctdf.Route, error) {
	route, exists := m.routes[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, id)
	}

	return route, nil
}

func (m *Memory) GetTrip(id string) (*ctdf.Trip, error) {
	trip, exists := m.trips[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrip, id)
	}

	return trip, nil
}

func (m *Memory) GetService(id string) (*ctdf.Service, error) {
	service, exists := m.services[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, id)
	}

	return service, nil
}

func (m *Memory) GetRouteStation(id string) (ctdf.RouteStation, error) {
	routeStation, exists := m.routeStations[id]
	if !exists {
		return ctdf.RouteStation{}, fmt.Errorf("%w: %s", ErrUnknownRouteStation, id)
	}

	return routeStation, nil
}

func (m *Memory) ServicesRunningOn(date time.Time) map[string]bool {
	running := map[string]bool{}

	for id, service := range m.services {
		if service.OperatesOn(date) {
			running[id] = true
		}
	}

	return running
}

func (m *Memory) Stations() []*ctdf.Station {
	stations := make([]*ctdf.Station, 0, len(m.stations))
	for _, station := range m.stations {
		stations = append(stations, station)
	}

	sort.Slice(stations, func(i, j int) bool {
		return stations[i].PrimaryIdentifier < stations[j].PrimaryIdentifier
	})

	return stations
}

func (m *Memory) Routes() []*ctdf.Route {
	routes := make([]*ctdf.Route, 0, len(m.routes))
	for _, route := range m.routes {
		routes = append(routes, route)
	}

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].PrimaryIdentifier < routes[j].PrimaryIdentifier
	})

	return routes
}

func (m *Memory) Trips() []*ctdf.Trip {
	trips := make([]*ctdf.Trip, 0, len(m.trips))
	for _, trip := range m.trips {
		trips = append(trips, trip)
	}

	sort.Slice(trips, func(i, j int) bool {
		return trips[i].PrimaryIdentifier < trips[j].PrimaryIdentifier
	})

	return trips
}

func (m *Memory) RouteStations() []ctdf.RouteStation {
	routeStations := make([]ctdf.RouteStation, 0, len(m.routeStations))
	for _, routeStation := range m.routeStations {
		routeStations = append(routeStations, routeStation)
	}

	sort.Slice(routeStations, func(i, j int) bool {
		return routeStations[i].Identifier() < routeStations[j].Identifier()
	})

	return routeStations
}
