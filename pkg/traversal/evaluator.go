package traversal

import (
	"github.com/travigo/journeyplanner/pkg/heuristics"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

type Evaluation int

const (
	Continue Evaluation = iota
	IncludeAndPrune
	ExcludeAndPrune
)

// Evaluator decides what happens to a branch as it arrives at a node, it is
// the only place admissibility is checked
type Evaluator struct {
	heuristics *heuristics.ServiceHeuristics
	states     *States
}

func NewEvaluator(serviceHeuristics *heuristics.ServiceHeuristics, states *States) *Evaluator {
	return &Evaluator{
		heuristics: serviceHeuristics,
		states:     states,
	}
}

func (e *Evaluator) Evaluate(node *journeygraph.Node, via *journeygraph.Edge, pathLength int, journey *JourneyState) Evaluation {
	if !e.heuristics.PathLengthUnderLimit(node.ID, pathLength).IsValid() {
		return ExcludeAndPrune
	}
	if !e.heuristics.CheckNumberChanges(node.ID, journey.Changes()).IsValid() {
		return ExcludeAndPrune
	}

	if e.states.IsDestination(node.ID) {
		return IncludeAndPrune
	}

	if node.Kind == journeygraph.KindRouteStation {
		if !e.heuristics.CanReachDestination(node).IsValid() {
			return ExcludeAndPrune
		}
	}

	if via != nil && via.Type == journeygraph.EdgeWalksTo {
		return Continue
	}

	if !e.heuristics.JourneyDurationUnderLimit(node.ID, journey.Elapsed()).IsValid() {
		return ExcludeAndPrune
	}

	if journey.OnVehicle() {
		return Continue
	}

	clock := journey.Clock()

	switch node.Kind {
	case journeygraph.KindService:
		if !e.heuristics.CheckServiceDate(node).IsValid() {
			return ExcludeAndPrune
		}
		if !e.heuristics.CheckServiceTime(node, clock).IsValid() {
			return ExcludeAndPrune
		}
	case journeygraph.KindHour:
		if !e.heuristics.InterestedInHour(node, clock).IsValid() {
			return ExcludeAndPrune
		}
	case journeygraph.KindMinute:
		if via != nil && via.Type == journeygraph.EdgeToMinute {
			if !e.heuristics.CheckTime(node, via.Time, clock).IsValid() {
				return ExcludeAndPrune
			}
		}
	}

	return Continue
}
