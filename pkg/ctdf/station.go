package ctdf

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type Station struct {
	PrimaryIdentifier string
	PrimaryName       string
	Area              string

	Location LatLong

	IsTram        bool
	IsInterchange bool

	Platforms []string
	Routes    []string
}

func (s *Station) ServesRoute(routeRef string) bool {
	return slices.Contains(s.Routes, routeRef)
}

type Platform struct {
	PrimaryIdentifier string
	PrimaryName       string
	StationRef        string

	Routes []string
}

// PlatformIdentifier combines the station identifier with the platform number,
// the last character of the stop code
func PlatformIdentifier(stationRef string, stopCode string) string {
	if stopCode == "" {
		return stationRef
	}

	return stationRef + stopCode[len(stopCode)-1:]
}

type Route struct {
	PrimaryIdentifier string
	PrimaryName       string
	ShortName         string
	OperatorRef       string

	TransportType TransportType
}

func (r *Route) IsTram() bool {
	return r.TransportType == TransportTypeTram
}

type RouteStation struct {
	RouteRef   string
	StationRef string
}

func (rs RouteStation) Identifier() string {
	return RouteStationIdentifier(rs.RouteRef, rs.StationRef)
}

func RouteStationIdentifier(routeRef string, stationRef string) string {
	return fmt.Sprintf("%s:%s", stationRef, routeRef)
}
