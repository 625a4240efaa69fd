package ctdf

import (
	"sort"
)

type Trip struct {
	PrimaryIdentifier string

	Headsign   string
	ServiceRef string
	RouteRef   string

	StopCalls []StopCall
}

// StopCall keeps the sequence number it was imported with
type StopCall struct {
	StationRef     string
	PlatformRef    string
	SequenceNumber int

	ArrivalTime   TimeOfDay
	DepartureTime TimeOfDay
}

// CallsInSequence returns a copy of the stop calls ordered by sequence number
func (t *Trip) CallsInSequence() []StopCall {
	calls := make([]StopCall, len(t.StopCalls))
	copy(calls, t.StopCalls)

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].SequenceNumber < calls[j].SequenceNumber
	})

	return calls
}

func (t *Trip) EarliestDeparture() TimeOfDay {
	calls := t.CallsInSequence()
	if len(calls) == 0 {
		return TimeOfDay{}
	}

	return calls[0].DepartureTime
}

func (t *Trip) LatestDeparture() TimeOfDay {
	calls := t.CallsInSequence()
	if len(calls) == 0 {
		return TimeOfDay{}
	}

	return calls[len(calls)-1].DepartureTime
}

func (t *Trip) CallAt(stationRef string) (StopCall, bool) {
	for _, call := range t.StopCalls {
		if call.StationRef == stationRef {
			return call, true
		}
	}

	return StopCall{}, false
}

// Duration is the scheduled minutes from the first departure to the last arrival
func (t *Trip) Duration() int {
	calls := t.CallsInSequence()
	if len(calls) == 0 {
		return 0
	}

	return calls[len(calls)-1].ArrivalTime.RelativeTo(calls[0].DepartureTime)
}
