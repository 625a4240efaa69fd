package journeygraph

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Transient ids are allocated well above anything a built network uses
const firstTransientID NodeID = 1 << 40

// Graph is the time expanded network. Everything added by the builder is
// read only once frozen, the only mutable part is the transient registry used
// by query scopes.
type Graph struct {
	nodes []*Node
	edges map[NodeID][]*Edge

	byKind        map[NodeKind][]NodeID
	stations      map[string]NodeID
	platforms     map[string]NodeID
	routeStations map[string]NodeID

	edgeCount int

	transientMutex  sync.Mutex
	transient       map[NodeID]uint64
	nextTransientID atomic.Int64
	nextScopeID     atomic.Uint64
}

func newGraph() *Graph {
	graph := &Graph{
		edges:         map[NodeID][]*Edge{},
		byKind:        map[NodeKind][]NodeID{},
		stations:      map[string]NodeID{},
		platforms:     map[string]NodeID{},
		routeStations: map[string]NodeID{},
		transient:     map[NodeID]uint64{},
	}
	graph.nextTransientID.Store(int64(firstTransientID))

	return graph
}

func (g *Graph) addNode(node *Node) *Node {
	node.ID = NodeID(len(g.nodes) + 1)
	g.nodes = append(g.nodes, node)
	g.byKind[node.Kind] = append(g.byKind[node.Kind], node.ID)

	switch node.Kind {
	case KindStation:
		g.stations[node.StationRef] = node.ID
	case KindPlatform:
		g.platforms[node.PlatformRef] = node.ID
	case KindRouteStation:
		g.routeStations[node.RouteStationRef()] = node.ID
	}

	return node
}

func (g *Graph) addEdge(edge *Edge) {
	g.edges[edge.From] = append(g.edges[edge.From], edge)
	g.edgeCount++
}

func (g *Graph) isBaseNode(id NodeID) bool {
	return id >= 1 && int(id) <= len(g.nodes)
}

func (g *Graph) Node(id NodeID) (*Node, error) {
	if !g.isBaseNode(id) {
		return nil, fmt.Errorf("%w %d", ErrUnknownNode, id)
	}

	return g.nodes[id-1], nil
}

func (g *Graph) NodeKind(id NodeID) (NodeKind, error) {
	node, err := g.Node(id)
	if err != nil {
		return 0, err
	}

	return node.Kind, nil
}

// OutgoingEdges returns the edges leaving id in construction order, limited to
// the given types when any are passed
func (g *Graph) OutgoingEdges(id NodeID, types ...EdgeType) []*Edge {
	edges := g.edges[id]
	if len(types) == 0 {
		return edges
	}

	var filtered []*Edge
	for _, edge := range edges {
		if matchesType(edge, types) {
			filtered = append(filtered, edge)
		}
	}

	return filtered
}

func (g *Graph) StationNode(stationRef string) (NodeID, error) {
	id, exists := g.stations[stationRef]
	if !exists {
		return 0, fmt.Errorf("%w for station %s", ErrUnknownNode, stationRef)
	}

	return id, nil
}

func (g *Graph) PlatformNode(platformRef string) (NodeID, error) {
	id, exists := g.platforms[platformRef]
	if !exists {
		return 0, fmt.Errorf("%w for platform %s", ErrUnknownNode, platformRef)
	}

	return id, nil
}

func (g *Graph) RouteStationNode(routeStationRef string) (NodeID, error) {
	id, exists := g.routeStations[routeStationRef]
	if !exists {
		return 0, fmt.Errorf("%w for route station %s", ErrUnknownNode, routeStationRef)
	}

	return id, nil
}

// NodesOfKind is the read only kind index
func (g *Graph) NodesOfKind(kind NodeKind) []NodeID {
	return g.byKind[kind]
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// TransientNodeCount is the number of query nodes currently registered by open scopes
func (g *Graph) TransientNodeCount() int {
	g.transientMutex.Lock()
	defer g.transientMutex.Unlock()

	return len(g.transient)
}

func (g *Graph) registerTransient(scopeID uint64) NodeID {
	id := NodeID(g.nextTransientID.Add(1))

	g.transientMutex.Lock()
	g.transient[id] = scopeID
	g.transientMutex.Unlock()

	return id
}

func (g *Graph) releaseTransient(scopeID uint64, ids []NodeID) error {
	g.transientMutex.Lock()
	defer g.transientMutex.Unlock()

	for _, id := range ids {
		owner, exists := g.transient[id]
		if !exists || owner != scopeID {
			return fmt.Errorf("%w: transient node %d is not owned by scope %d", ErrGraphInvariant, id, scopeID)
		}
		delete(g.transient, id)
	}

	return nil
}
