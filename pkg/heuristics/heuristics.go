package heuristics

import (
	"time"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/reachability"
	"github.com/travigo/journeyplanner/pkg/util"
)

type Limits struct {
	MaxPathLength      int
	MaxJourneyDuration int
	MaxChanges         int
	MaxWait            int
}

// ServiceHeuristics decides which parts of the graph are worth exploring for a
// single query. Every check is recorded against the query's ServiceReasons.
type ServiceHeuristics struct {
	Date            time.Time
	QueryTime       ctdf.TimeOfDay
	RunningServices map[string]bool
	Destinations    []string
	Limits          Limits

	matrix  *reachability.Matrix
	reasons *ServiceReasons
}

func NewServiceHeuristics(date time.Time, queryTime ctdf.TimeOfDay, runningServices map[string]bool, destinations []string, limits Limits, matrix *reachability.Matrix, reasons *ServiceReasons) *ServiceHeuristics {
	return &ServiceHeuristics{
		Date:            date,
		QueryTime:       queryTime,
		RunningServices: runningServices,
		Destinations:    util.RemoveDuplicateStrings(destinations, nil),
		Limits:          limits,
		matrix:          matrix,
		reasons:         reasons,
	}
}

func (h *ServiceHeuristics) Reasons() *ServiceReasons {
	return h.reasons
}

func (h *ServiceHeuristics) result(valid bool, code ReasonCode, node journeygraph.NodeID) ServiceReason {
	if valid {
		code = Valid
	}

	return h.reasons.Record(ServiceReason{Code: code, Node: node})
}

func (h *ServiceHeuristics) CheckServiceDate(node *journeygraph.Node) ServiceReason {
	return h.result(h.RunningServices[node.ServiceRef], DoesNotRunOnQueryDate, node.ID)
}

// CheckServiceTime accepts a service whose departures from this route station
// overlap the window from clock up to the maximum wait
func (h *ServiceHeuristics) CheckServiceTime(node *journeygraph.Node, clock ctdf.TimeOfDay) ServiceReason {
	earliest := node.EarliestDeparture.MinusMinutes(h.Limits.MaxWait)
	return h.result(clock.Between(earliest, node.LatestDeparture), DoesNotOperateOnTime, node.ID)
}

func (h *ServiceHeuristics) InterestedInHour(node *journeygraph.Node, clock ctdf.TimeOfDay) ServiceReason {
	hourStart := ctdf.TimeOf(node.Hour, 0)
	hourEnd := ctdf.TimeOf(node.Hour, 59)
	windowEnd := clock.PlusMinutes(h.Limits.MaxWait)

	interested := hourStart.Between(clock, windowEnd) || clock.Between(hourStart, hourEnd)

	return h.result(interested, DoesNotOperateOnTime, node.ID)
}

// CheckTime accepts a departure no earlier than clock and no later than the maximum wait after it
func (h *ServiceHeuristics) CheckTime(node *journeygraph.Node, departure ctdf.TimeOfDay, clock ctdf.TimeOfDay) ServiceReason {
	return h.result(departure.Between(clock, clock.PlusMinutes(h.Limits.MaxWait)), DoesNotOperateOnTime, node.ID)
}

func (h *ServiceHeuristics) CheckNumberChanges(node journeygraph.NodeID, changes int) ServiceReason {
	return h.result(changes <= h.Limits.MaxChanges, TooManyChanges, node)
}

func (h *ServiceHeuristics) JourneyDurationUnderLimit(node journeygraph.NodeID, elapsed int) ServiceReason {
	return h.result(elapsed <= h.Limits.MaxJourneyDuration, TookTooLong, node)
}

func (h *ServiceHeuristics) PathLengthUnderLimit(node journeygraph.NodeID, length int) ServiceReason {
	return h.result(length <= h.Limits.MaxPathLength, PathTooLong, node)
}

func (h *ServiceHeuristics) CanReachDestination(node *journeygraph.Node) ServiceReason {
	if h.matrix == nil || len(h.Destinations) == 0 {
		return h.result(true, Valid, node.ID)
	}

	return h.result(h.matrix.ReachableAny(node.ID, h.Destinations), StationNotReachable, node.ID)
}
