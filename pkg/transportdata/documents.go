package transportdata

import (
	"fmt"
	"strings"

	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/util"
)

// NetworkDocument is the stored form of a network, shared by the YAML files and
// the MongoDB collections
type NetworkDocument struct {
	Stations []StationDocument `yaml:"stations"`
	Routes   []RouteDocument   `yaml:"routes"`
	Services []ServiceDocument `yaml:"services"`
	Trips    []TripDocument    `yaml:"trips"`
}

type StationDocument struct {
	PrimaryIdentifier string `yaml:"id" bson:"primaryidentifier"`
	PrimaryName       string `yaml:"name" bson:"primaryname"`
	Area              string `yaml:"area" bson:"area"`

	Latitude  float64 `yaml:"latitude" bson:"latitude"`
	Longitude float64 `yaml:"longitude" bson:"longitude"`
	Easting   string  `yaml:"easting" bson:"easting"`
	Northing  string  `yaml:"northing" bson:"northing"`

	Tram        bool `yaml:"tram" bson:"tram"`
	Interchange bool `yaml:"interchange" bson:"interchange"`

	Platforms []PlatformDocument `yaml:"platforms" bson:"platforms"`
}

type PlatformDocument struct {
	StopCode string `yaml:"code" bson:"code"`
	Name     string `yaml:"name" bson:"name"`
}

type RouteDocument struct {
	PrimaryIdentifier string `yaml:"id" bson:"primaryidentifier"`
	PrimaryName       string `yaml:"name" bson:"primaryname"`
	ShortName         string `yaml:"shortName" bson:"shortname"`
	OperatorRef       string `yaml:"operator" bson:"operatorref"`
	Mode              string `yaml:"mode" bson:"mode"`
}

type ServiceDocument struct {
	PrimaryIdentifier string `yaml:"id" bson:"primaryidentifier"`
	ServiceName       string `yaml:"name" bson:"servicename"`
	RouteRef          string `yaml:"route" bson:"routeref"`

	Days      []string `yaml:"days" bson:"days"`
	StartDate string   `yaml:"start" bson:"startdate"`
	EndDate   string   `yaml:"end" bson:"enddate"`
}

type TripDocument struct {
	PrimaryIdentifier string `yaml:"id" bson:"primaryidentifier"`
	Headsign          string `yaml:"headsign" bson:"headsign"`
	ServiceRef        string `yaml:"service" bson:"serviceref"`
	RouteRef          string `yaml:"route" bson:"routeref"`

	Calls  []StopCallDocument `yaml:"calls" bson:"calls"`
	Repeat *RepeatDocument    `yaml:"repeat" bson:"repeat,omitempty"`
}

type StopCallDocument struct {
	StationRef     string `yaml:"station" bson:"station"`
	StopCode       string `yaml:"platform" bson:"platform"`
	SequenceNumber int    `yaml:"sequence" bson:"sequence"`
	ArrivalTime    string `yaml:"arrive" bson:"arrive"`
	DepartureTime  string `yaml:"depart" bson:"depart"`
}

// RepeatDocument expands a trip into a frequency based timetable, Every is an
// ISO 8601 duration and Until the latest first departure
type RepeatDocument struct {
	Every string `yaml:"every" bson:"every"`
	Until string `yaml:"until" bson:"until"`
}

func (n *NetworkDocument) ToRepository() (*Memory, error) {
	repository := NewMemory()

	for _, stationDocument := range n.Stations {
		station, platforms, err := stationDocument.toCTDF()
		if err != nil {
			return nil, err
		}

		repository.AddStation(station)
		for _, platform := range platforms {
			repository.AddPlatform(platform)
		}
	}

	for _, routeDocument := range n.Routes {
		repository.AddRoute(&ctdf.Route{
			PrimaryIdentifier: routeDocument.PrimaryIdentifier,
			PrimaryName:       routeDocument.PrimaryName,
			ShortName:         routeDocument.ShortName,
			OperatorRef:       routeDocument.OperatorRef,
			TransportType:     ctdf.ParseTransportType(routeDocument.Mode),
		})
	}

	for _, serviceDocument := range n.Services {
		service, err := serviceDocument.toCTDF()
		if err != nil {
			return nil, err
		}
		repository.AddService(service)
	}

	for _, tripDocument := range n.Trips {
		trips, err := tripDocument.toCTDF()
		if err != nil {
			return nil, err
		}
		for _, trip := range trips {
			repository.AddTrip(trip)
		}
	}

	if err := repository.Finalise(); err != nil {
		return nil, err
	}

	return repository, nil
}

func (s StationDocument) toCTDF() (*ctdf.Station, []*ctdf.Platform, error) {
	location := ctdf.LatLong{Latitude: s.Latitude, Longitude: s.Longitude}

	if (s.Latitude == 0 || s.Longitude == 0) && s.Easting != "" && s.Northing != "" {
		var err error
		location, err = ctdf.LatLongFromGridRef(s.Easting, s.Northing)
		if err != nil {
			return nil, nil, fmt.Errorf("station %s grid reference: %w", s.PrimaryIdentifier, err)
		}
	}

	station := &ctdf.Station{
		PrimaryIdentifier: s.PrimaryIdentifier,
		PrimaryName:       s.PrimaryName,
		Area:              s.Area,
		Location:          location,
		IsTram:            s.Tram,
		IsInterchange:     s.Interchange,
	}

	var platforms []*ctdf.Platform
	for _, platformDocument := range s.Platforms {
		if platformDocument.StopCode == "" {
			return nil, nil, fmt.Errorf("station %s has a platform without a code", s.PrimaryIdentifier)
		}

		name := platformDocument.Name
		if name == "" {
			name = fmt.Sprintf("%s platform %s", s.PrimaryName, platformDocument.StopCode[len(platformDocument.StopCode)-1:])
		}

		platforms = append(platforms, &ctdf.Platform{
			PrimaryIdentifier: ctdf.PlatformIdentifier(s.PrimaryIdentifier, platformDocument.StopCode),
			PrimaryName:       name,
			StationRef:        s.PrimaryIdentifier,
		})
	}

	return station, platforms, nil
}

func (s ServiceDocument) toCTDF() (*ctdf.Service, error) {
	calendar := ctdf.ServiceCalendar{}

	for _, day := range s.Days {
		switch strings.ToLower(day) {
		case "monday":
			calendar.Days.Monday = true
		case "tuesday":
			calendar.Days.Tuesday = true
		case "wednesday":
			calendar.Days.Wednesday = true
		case "thursday":
			calendar.Days.Thursday = true
		case "friday":
			calendar.Days.Friday = true
		case "saturday":
			calendar.Days.Saturday = true
		case "sunday":
			calendar.Days.Sunday = true
		default:
			return nil, fmt.Errorf("service %s: unknown day %q", s.PrimaryIdentifier, day)
		}
	}

	var err error
	if calendar.StartDate, err = util.ParseDate(s.StartDate); err != nil {
		return nil, fmt.Errorf("service %s start date: %w", s.PrimaryIdentifier, err)
	}
	if calendar.EndDate, err = util.ParseDate(s.EndDate); err != nil {
		return nil, fmt.Errorf("service %s end date: %w", s.PrimaryIdentifier, err)
	}

	return &ctdf.Service{
		PrimaryIdentifier: s.PrimaryIdentifier,
		ServiceName:       s.ServiceName,
		RouteRef:          s.RouteRef,
		Calendar:          calendar,
	}, nil
}

func (t TripDocument) toCTDF() ([]*ctdf.Trip, error) {
	template := &ctdf.Trip{
		PrimaryIdentifier: t.PrimaryIdentifier,
		Headsign:          t.Headsign,
		ServiceRef:        t.ServiceRef,
		RouteRef:          t.RouteRef,
	}

	for index, callDocument := range t.Calls {
		call, err := callDocument.toCTDF(index)
		if err != nil {
			return nil, fmt.Errorf("trip %s: %w", t.PrimaryIdentifier, err)
		}
		template.StopCalls = append(template.StopCalls, call)
	}

	if t.Repeat == nil {
		return []*ctdf.Trip{template}, nil
	}

	interval, err := iso8601.ParseISO8601(t.Repeat.Every)
	if err != nil {
		return nil, fmt.Errorf("trip %s repeat interval: %w", t.PrimaryIdentifier, err)
	}
	every := interval.TH*60 + interval.TM
	if every <= 0 {
		return nil, fmt.Errorf("trip %s repeat interval must be at least a minute", t.PrimaryIdentifier)
	}

	until, err := ctdf.ParseTimeOfDay(t.Repeat.Until)
	if err != nil {
		return nil, fmt.Errorf("trip %s repeat until: %w", t.PrimaryIdentifier, err)
	}

	first := template.EarliestDeparture()
	window := until.RelativeTo(first)

	var trips []*ctdf.Trip
	for offset := 0; offset <= window; offset += every {
		trips = append(trips, shiftTrip(template, offset))
	}

	return trips, nil
}

func shiftTrip(template *ctdf.Trip, minutes int) *ctdf.Trip {
	trip := &ctdf.Trip{
		Headsign:   template.Headsign,
		ServiceRef: template.ServiceRef,
		RouteRef:   template.RouteRef,
	}

	for _, call := range template.StopCalls {
		call.ArrivalTime = call.ArrivalTime.PlusMinutes(minutes)
		call.DepartureTime = call.DepartureTime.PlusMinutes(minutes)
		trip.StopCalls = append(trip.StopCalls, call)
	}

	departure := strings.ReplaceAll(trip.EarliestDeparture().String(), ":", "")
	trip.PrimaryIdentifier = fmt.Sprintf("%s_%s", template.PrimaryIdentifier, departure)

	return trip
}

func (c StopCallDocument) toCTDF(index int) (ctdf.StopCall, error) {
	arrival := c.ArrivalTime
	departure := c.DepartureTime
	if arrival == "" {
		arrival = departure
	}
	if departure == "" {
		departure = arrival
	}

	arrivalTime, err := ctdf.ParseTimeOfDay(arrival)
	if err != nil {
		return ctdf.StopCall{}, fmt.Errorf("call at %s: %w", c.StationRef, err)
	}
	departureTime, err := ctdf.ParseTimeOfDay(departure)
	if err != nil {
		return ctdf.StopCall{}, fmt.Errorf("call at %s: %w", c.StationRef, err)
	}

	sequence := c.SequenceNumber
	if sequence == 0 {
		sequence = index + 1
	}

	platformRef := ""
	if c.StopCode != "" {
		platformRef = ctdf.PlatformIdentifier(c.StationRef, c.StopCode)
	}

	return ctdf.StopCall{
		StationRef:     c.StationRef,
		PlatformRef:    platformRef,
		SequenceNumber: sequence,
		ArrivalTime:    arrivalTime,
		DepartureTime:  departureTime,
	}, nil
}
