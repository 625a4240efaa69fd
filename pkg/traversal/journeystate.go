package traversal

import (
	"errors"
	"fmt"

	"github.com/travigo/journeyplanner/pkg/ctdf"
)

var (
	ErrAlreadyOnVehicle = errors.New("already on a vehicle")
	ErrNotOnVehicle     = errors.New("not on a vehicle")
)

// JourneyState is copied into every branch, so methods only ever change the
// branch that owns it
type JourneyState struct {
	queryTime ctdf.TimeOfDay

	anchorClock ctdf.TimeOfDay
	anchorCost  int
	totalCost   int

	onVehicle  bool
	tripRef    string
	serviceRef string

	changes       int
	hadVehicleLeg bool
}

func NewJourneyState(queryTime ctdf.TimeOfDay) JourneyState {
	return JourneyState{
		queryTime:   queryTime,
		anchorClock: queryTime,
	}
}

func (j *JourneyState) QueryTime() ctdf.TimeOfDay {
	return j.queryTime
}

// Clock is the time of day reached so far, the last anchor plus any cost since
func (j *JourneyState) Clock() ctdf.TimeOfDay {
	return j.anchorClock.PlusMinutes(j.totalCost - j.anchorCost)
}

// Elapsed is the number of minutes since the query time
func (j *JourneyState) Elapsed() int {
	return j.Clock().RelativeTo(j.queryTime)
}

func (j *JourneyState) TotalCost() int {
	return j.totalCost
}

func (j *JourneyState) OnVehicle() bool {
	return j.onVehicle
}

func (j *JourneyState) TripRef() string {
	return j.tripRef
}

func (j *JourneyState) ServiceRef() string {
	return j.serviceRef
}

func (j *JourneyState) Changes() int {
	return j.changes
}

func (j *JourneyState) HadVehicleLeg() bool {
	return j.hadVehicleLeg
}

func (j *JourneyState) UpdateClock(totalCost int) {
	j.totalCost = totalCost
}

// Board waits for the departure and gets on trip
func (j *JourneyState) Board(departure ctdf.TimeOfDay, totalCost int, tripRef string, serviceRef string) error {
	if j.onVehicle {
		return fmt.Errorf("%w: boarding %s while on %s", ErrAlreadyOnVehicle, tripRef, j.tripRef)
	}

	j.onVehicle = true
	j.tripRef = tripRef
	j.serviceRef = serviceRef
	j.anchor(departure, totalCost)

	return nil
}

// RecordDeparture moves the clock on to the scheduled departure from an
// intermediate stop, covering any time spent waiting there
func (j *JourneyState) RecordDeparture(departure ctdf.TimeOfDay, totalCost int) error {
	if !j.onVehicle {
		return fmt.Errorf("%w: departure recorded at %s", ErrNotOnVehicle, departure)
	}

	j.anchor(departure, totalCost)

	return nil
}

func (j *JourneyState) Leave(totalCost int) error {
	if !j.onVehicle {
		return ErrNotOnVehicle
	}

	if j.hadVehicleLeg {
		j.changes++
	}
	j.hadVehicleLeg = true

	j.onVehicle = false
	j.tripRef = ""
	j.serviceRef = ""
	j.UpdateClock(totalCost)

	return nil
}

func (j *JourneyState) anchor(clock ctdf.TimeOfDay, totalCost int) {
	j.anchorClock = clock
	j.anchorCost = totalCost
	j.totalCost = totalCost
}

func (j JourneyState) String() string {
	if j.onVehicle {
		return fmt.Sprintf("%s on %s changes %d", j.Clock(), j.tripRef, j.changes)
	}

	return fmt.Sprintf("%s changes %d", j.Clock(), j.changes)
}
