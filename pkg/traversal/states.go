package traversal

import (
	"fmt"

	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

var ErrUnexpectedNodeKind = fmt.Errorf("%w: unexpected node kind", journeygraph.ErrGraphInvariant)

type StateKind int

const (
	StateNotStarted StateKind = iota
	StateStation
	StateWalking
	StatePlatform
	StateRouteStation
	StateService
	StateHour
	StateMinute
	StateDestination
)

func (k StateKind) String() string {
	switch k {
	case StateNotStarted:
		return "NotStarted"
	case StateStation:
		return "Station"
	case StateWalking:
		return "Walking"
	case StatePlatform:
		return "Platform"
	case StateRouteStation:
		return "RouteStation"
	case StateService:
		return "Service"
	case StateHour:
		return "Hour"
	case StateMinute:
		return "Minute"
	case StateDestination:
		return "Destination"
	default:
		return fmt.Sprintf("StateKind(%d)", int(k))
	}
}

// TraversalState is where a branch is and which edges it may follow next
type TraversalState struct {
	Kind StateKind
	Node journeygraph.NodeID

	// Set on a RouteStation state reached by boarding rather than riding through
	Boarding bool

	outbound []*journeygraph.Edge
}

func (s TraversalState) Outbound() []*journeygraph.Edge {
	return s.outbound
}

// States works out the legal moves through a graph for one query
type States struct {
	view         journeygraph.View
	destinations map[journeygraph.NodeID]bool
}

func NewStates(view journeygraph.View, destinations []journeygraph.NodeID) *States {
	states := &States{
		view:         view,
		destinations: map[journeygraph.NodeID]bool{},
	}
	for _, destination := range destinations {
		states.destinations[destination] = true
	}

	return states
}

func (s *States) IsDestination(id journeygraph.NodeID) bool {
	return s.destinations[id]
}

func NotStarted() TraversalState {
	return TraversalState{Kind: StateNotStarted}
}

func (s *States) state(kind StateKind, node *journeygraph.Node, types ...journeygraph.EdgeType) TraversalState {
	return TraversalState{
		Kind:     kind,
		Node:     node.ID,
		outbound: s.view.OutgoingEdges(node.ID, types...),
	}
}

func unexpected(current TraversalState, node *journeygraph.Node) error {
	return fmt.Errorf("%w: %s from %s state", ErrUnexpectedNodeKind, node.Kind, current.Kind)
}

// NextState moves a branch from current onto node. Boarding and alighting are
// applied to journey here, via is nil only for the starting node.
func (s *States) NextState(current TraversalState, node *journeygraph.Node, via *journeygraph.Edge, journey *JourneyState, totalCost int) (TraversalState, error) {
	if via != nil && s.destinations[node.ID] {
		return TraversalState{Kind: StateDestination, Node: node.ID}, nil
	}

	switch current.Kind {
	case StateNotStarted:
		switch node.Kind {
		case journeygraph.KindStation:
			return s.state(StateStation, node, journeygraph.EdgeEnterPlatform, journeygraph.EdgeWalksFrom), nil
		case journeygraph.KindQueryNode:
			return s.state(StateWalking, node, journeygraph.EdgeWalksTo), nil
		}

	case StateWalking:
		switch node.Kind {
		case journeygraph.KindStation:
			return s.state(StateStation, node, journeygraph.EdgeEnterPlatform), nil
		case journeygraph.KindQueryNode:
			return s.state(StateWalking, node, journeygraph.EdgeFinishWalk), nil
		}

	case StateStation:
		switch node.Kind {
		case journeygraph.KindPlatform:
			return s.state(StatePlatform, node, journeygraph.EdgeBoard, journeygraph.EdgeInterchangeBoard), nil
		case journeygraph.KindQueryNode:
			return s.state(StateWalking, node, journeygraph.EdgeFinishWalk), nil
		}

	case StatePlatform:
		switch node.Kind {
		case journeygraph.KindRouteStation:
			next := s.state(StateRouteStation, node, journeygraph.EdgeToService)
			next.Boarding = true
			return next, nil
		case journeygraph.KindStation:
			return s.state(StateStation, node, journeygraph.EdgeEnterPlatform, journeygraph.EdgeWalksFrom), nil
		}

	case StateRouteStation:
		switch node.Kind {
		case journeygraph.KindService:
			return s.state(StateService, node, journeygraph.EdgeToHour), nil
		case journeygraph.KindPlatform:
			if via == nil || !via.Type.IsDeparting() {
				break
			}
			if err := journey.Leave(totalCost); err != nil {
				return TraversalState{}, fmt.Errorf("%w: %s", journeygraph.ErrGraphInvariant, err)
			}

			next := TraversalState{Kind: StatePlatform, Node: node.ID}
			for _, edge := range s.view.OutgoingEdges(node.ID, journeygraph.EdgeLeavePlatform, journeygraph.EdgeBoard, journeygraph.EdgeInterchangeBoard) {
				if edge.Type.IsBoarding() && edge.To == via.From {
					continue
				}
				next.outbound = append(next.outbound, edge)
			}
			return next, nil
		}

	case StateService:
		if node.Kind == journeygraph.KindHour {
			next := TraversalState{Kind: StateHour, Node: node.ID}
			for _, edge := range s.view.OutgoingEdges(node.ID, journeygraph.EdgeToMinute) {
				if journey.OnVehicle() && edge.TripRef != journey.TripRef() {
					continue
				}
				next.outbound = append(next.outbound, edge)
			}
			return next, nil
		}

	case StateHour:
		if node.Kind == journeygraph.KindMinute && via != nil {
			var err error
			if journey.OnVehicle() {
				err = journey.RecordDeparture(via.Time, totalCost)
			} else {
				err = journey.Board(via.Time, totalCost, via.TripRef, via.ServiceRef)
			}
			if err != nil {
				return TraversalState{}, fmt.Errorf("%w: %s", journeygraph.ErrGraphInvariant, err)
			}

			next := TraversalState{Kind: StateMinute, Node: node.ID}
			for _, edge := range s.view.OutgoingEdges(node.ID, journeygraph.EdgeGoesTo) {
				if edge.TripRef == journey.TripRef() {
					next.outbound = append(next.outbound, edge)
				}
			}
			return next, nil
		}

	case StateMinute:
		if node.Kind == journeygraph.KindRouteStation {
			next := TraversalState{Kind: StateRouteStation, Node: node.ID}
			for _, edge := range s.view.OutgoingEdges(node.ID, journeygraph.EdgeDepart, journeygraph.EdgeInterchangeDepart, journeygraph.EdgeToService) {
				if edge.Type == journeygraph.EdgeToService && edge.ServiceRef != journey.ServiceRef() {
					continue
				}
				next.outbound = append(next.outbound, edge)
			}
			return next, nil
		}
	}

	return TraversalState{}, unexpected(current, node)
}
