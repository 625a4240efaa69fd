package ctdf

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/travigo/journeyplanner/pkg/util"
)

type StageType string

const (
	StageTypeVehicle StageType = "Vehicle"
	StageTypeWalking StageType = "Walking"
)

// StageLocation is either a station or a free-form point when StationRef is empty
type StageLocation struct {
	StationRef string  `json:"StationRef,omitempty"`
	Name       string  `json:"Name"`
	Location   LatLong `json:"Location"`
}

func (l StageLocation) IsStation() bool {
	return l.StationRef != ""
}

type Stage struct {
	Type StageType

	Origin      StageLocation
	Destination StageLocation

	RouteRef      string        `json:",omitempty"`
	TransportType TransportType `json:",omitempty"`
	TripRef       string        `json:",omitempty"`
	PlatformRef   string        `json:",omitempty"`
	Headsign      string        `json:",omitempty"`

	FirstDepartureTime  TimeOfDay
	ExpectedArrivalTime TimeOfDay

	Cost        int
	PassedStops int

	TowardsMyLocation bool `json:",omitempty"`
}

type RawJourney struct {
	Stages    []Stage
	QueryTime TimeOfDay
}

func (j *RawJourney) DepartureTime() TimeOfDay {
	if len(j.Stages) == 0 {
		return j.QueryTime
	}

	return j.Stages[0].FirstDepartureTime
}

func (j *RawJourney) ArrivalTime() TimeOfDay {
	if len(j.Stages) == 0 {
		return j.QueryTime
	}

	return j.Stages[len(j.Stages)-1].ExpectedArrivalTime
}

// Duration in minutes from the first stage departing to the last arriving
func (j *RawJourney) Duration() int {
	return j.ArrivalTime().RelativeTo(j.DepartureTime())
}

func (j *RawJourney) Changes() int {
	vehicleStages := 0
	for _, stage := range j.Stages {
		if stage.Type == StageTypeVehicle {
			vehicleStages++
		}
	}

	if vehicleStages == 0 {
		return 0
	}
	return vehicleStages - 1
}

// GenerateFunctionalHash identifies a journey by its stages, two journeys found from
// different query times with the same stages hash the same
func (j *RawJourney) GenerateFunctionalHash() string {
	hash := sha256.New()

	for _, stage := range j.Stages {
		hash.Write([]byte(stage.Type))
		hash.Write([]byte(stage.Origin.StationRef))
		hash.Write([]byte(stage.Origin.Location.String()))
		hash.Write([]byte(stage.Destination.StationRef))
		hash.Write([]byte(stage.Destination.Location.String()))
		hash.Write([]byte(stage.RouteRef))
		hash.Write([]byte(stage.TripRef))
		hash.Write([]byte(stage.PlatformRef))
		hash.Write([]byte(stage.FirstDepartureTime.String()))
		hash.Write([]byte(stage.ExpectedArrivalTime.String()))
		hash.Write([]byte(strconv.Itoa(stage.Cost)))
		hash.Write([]byte(strconv.Itoa(stage.PassedStops)))
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}

func FilterIdenticalJourneys(journeys []*RawJourney) []*RawJourney {
	return util.Deduplicate(journeys, (*RawJourney).GenerateFunctionalHash)
}
