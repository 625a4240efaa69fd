package journeygraph

import (
	"errors"
	"fmt"

	"github.com/travigo/journeyplanner/pkg/ctdf"
)

// ErrGraphInvariant is the parent of every error caused by a graph that was built
// or traversed inconsistently
var ErrGraphInvariant = errors.New("graph invariant violated")

var ErrUnknownNode = fmt.Errorf("%w: unknown node", ErrGraphInvariant)

type NodeID int64

type NodeKind int

const (
	KindStation NodeKind = iota + 1
	KindRouteStation
	KindPlatform
	KindService
	KindHour
	KindMinute
	KindQueryNode
)

var nodeKindNames = map[NodeKind]string{
	KindStation:      "STATION",
	KindRouteStation: "ROUTE_STATION",
	KindPlatform:     "PLATFORM",
	KindService:      "SERVICE",
	KindHour:         "HOUR",
	KindMinute:       "MINUTE",
	KindQueryNode:    "QUERY_NODE",
}

func (k NodeKind) String() string {
	if name, exists := nodeKindNames[k]; exists {
		return name
	}

	return fmt.Sprintf("NodeKind(%d)", int(k))
}

func ParseNodeKind(value string) (NodeKind, error) {
	for kind, name := range nodeKindNames {
		if name == value {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("unknown node kind %q", value)
}

type EdgeType int

const (
	EdgeBoard EdgeType = iota + 1
	EdgeDepart
	EdgeInterchangeBoard
	EdgeInterchangeDepart
	EdgeEnterPlatform
	EdgeLeavePlatform
	EdgeGoesTo
	EdgeToService
	EdgeToHour
	EdgeToMinute
	EdgeWalksTo
	EdgeWalksFrom
	EdgeFinishWalk
	EdgeOnRoute
)

var edgeTypeNames = map[EdgeType]string{
	EdgeBoard:             "BOARD",
	EdgeDepart:            "DEPART",
	EdgeInterchangeBoard:  "INTERCHANGE_BOARD",
	EdgeInterchangeDepart: "INTERCHANGE_DEPART",
	EdgeEnterPlatform:     "ENTER_PLATFORM",
	EdgeLeavePlatform:     "LEAVE_PLATFORM",
	EdgeGoesTo:            "GOES_TO",
	EdgeToService:         "TO_SERVICE",
	EdgeToHour:            "TO_HOUR",
	EdgeToMinute:          "TO_MINUTE",
	EdgeWalksTo:           "WALKS_TO",
	EdgeWalksFrom:         "WALKS_FROM",
	EdgeFinishWalk:        "FINISH_WALK",
	EdgeOnRoute:           "ON_ROUTE",
}

func (t EdgeType) String() string {
	if name, exists := edgeTypeNames[t]; exists {
		return name
	}

	return fmt.Sprintf("EdgeType(%d)", int(t))
}

func ParseEdgeType(value string) (EdgeType, error) {
	for edgeType, name := range edgeTypeNames {
		if name == value {
			return edgeType, nil
		}
	}

	return 0, fmt.Errorf("unknown edge type %q", value)
}

func (t EdgeType) IsBoarding() bool {
	return t == EdgeBoard || t == EdgeInterchangeBoard
}

func (t EdgeType) IsDeparting() bool {
	return t == EdgeDepart || t == EdgeInterchangeDepart
}

// Node only fills in the fields relevant to its kind
type Node struct {
	ID   NodeID
	Kind NodeKind
	Name string

	StationRef  string
	RouteRef    string
	PlatformRef string
	ServiceRef  string

	// HOUR
	Hour int
	// MINUTE
	Time ctdf.TimeOfDay
	// SERVICE, departures from the owning route station
	EarliestDeparture ctdf.TimeOfDay
	LatestDeparture   ctdf.TimeOfDay

	Location ctdf.LatLong
}

func (n *Node) RouteStationRef() string {
	return ctdf.RouteStationIdentifier(n.RouteRef, n.StationRef)
}

func (n *Node) String() string {
	switch n.Kind {
	case KindStation:
		return fmt.Sprintf("%s(%d %s)", n.Kind, n.ID, n.StationRef)
	case KindPlatform:
		return fmt.Sprintf("%s(%d %s)", n.Kind, n.ID, n.PlatformRef)
	case KindRouteStation:
		return fmt.Sprintf("%s(%d %s)", n.Kind, n.ID, n.RouteStationRef())
	case KindService:
		return fmt.Sprintf("%s(%d %s %s)", n.Kind, n.ID, n.RouteStationRef(), n.ServiceRef)
	case KindHour:
		return fmt.Sprintf("%s(%d %s %02d)", n.Kind, n.ID, n.RouteStationRef(), n.Hour)
	case KindMinute:
		return fmt.Sprintf("%s(%d %s %s)", n.Kind, n.ID, n.RouteStationRef(), n.Time)
	default:
		return fmt.Sprintf("%s(%d %s)", n.Kind, n.ID, n.Name)
	}
}

type Edge struct {
	Type EdgeType
	From NodeID
	To   NodeID

	// Cost in minutes
	Cost int

	StationRef  string
	RouteRef    string
	PlatformRef string
	ServiceRef  string
	TripRef     string

	// Departure time at the tail for GOES_TO and TO_MINUTE
	Time ctdf.TimeOfDay
}

func (e *Edge) String() string {
	if e.TripRef != "" {
		return fmt.Sprintf("%d-[%s %s %s %d]->%d", e.From, e.Type, e.TripRef, e.Time, e.Cost, e.To)
	}

	return fmt.Sprintf("%d-[%s %d]->%d", e.From, e.Type, e.Cost, e.To)
}

// View is read access to a graph, either the built network or a query scope layered on top of it
type View interface {
	Node(id NodeID) (*Node, error)
	NodeKind(id NodeID) (NodeKind, error)
	OutgoingEdges(id NodeID, types ...EdgeType) []*Edge
	StationNode(stationRef string) (NodeID, error)
}

func matchesType(edge *Edge, types []EdgeType) bool {
	if len(types) == 0 {
		return true
	}

	for _, edgeType := range types {
		if edge.Type == edgeType {
			return true
		}
	}

	return false
}
