package journeygraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/travigo/journeyplanner/pkg/ctdf"
)

var ErrScopeClosed = errors.New("query scope is closed")

// QueryScope layers request specific query nodes and walking edges over the
// shared graph. Nothing added here is visible outside the scope.
type QueryScope struct {
	graph *Graph
	id    uint64

	mutex  sync.RWMutex
	nodes  map[NodeID]*Node
	order  []NodeID
	edges  map[NodeID][]*Edge
	closed bool
}

func (g *Graph) NewQueryScope() *QueryScope {
	return &QueryScope{
		graph: g,
		id:    g.nextScopeID.Add(1),
		nodes: map[NodeID]*Node{},
		edges: map[NodeID][]*Edge{},
	}
}

func (s *QueryScope) Graph() *Graph {
	return s.graph
}

func (s *QueryScope) AddQueryNode(name string, location ctdf.LatLong) (*Node, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil, ErrScopeClosed
	}

	node := &Node{
		ID:       s.graph.registerTransient(s.id),
		Kind:     KindQueryNode,
		Name:     name,
		Location: location,
	}
	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)

	return node, nil
}

// AddEdge links two nodes visible to this scope, either end may be part of the shared graph
func (s *QueryScope) AddEdge(edge Edge) (*Edge, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil, ErrScopeClosed
	}
	if !s.visible(edge.From) {
		return nil, fmt.Errorf("%w %d", ErrUnknownNode, edge.From)
	}
	if !s.visible(edge.To) {
		return nil, fmt.Errorf("%w %d", ErrUnknownNode, edge.To)
	}
	if edge.Cost < 0 {
		return nil, fmt.Errorf("%w: negative cost %d on %s", ErrGraphInvariant, edge.Cost, edge.Type)
	}

	added := edge
	s.edges[edge.From] = append(s.edges[edge.From], &added)

	return &added, nil
}

func (s *QueryScope) visible(id NodeID) bool {
	if _, exists := s.nodes[id]; exists {
		return true
	}

	return s.graph.isBaseNode(id)
}

func (s *QueryScope) Node(id NodeID) (*Node, error) {
	s.mutex.RLock()
	node, exists := s.nodes[id]
	s.mutex.RUnlock()

	if exists {
		return node, nil
	}

	return s.graph.Node(id)
}

func (s *QueryScope) NodeKind(id NodeID) (NodeKind, error) {
	node, err := s.Node(id)
	if err != nil {
		return 0, err
	}

	return node.Kind, nil
}

func (s *QueryScope) OutgoingEdges(id NodeID, types ...EdgeType) []*Edge {
	base := s.graph.OutgoingEdges(id, types...)

	s.mutex.RLock()
	extra := s.edges[id]
	s.mutex.RUnlock()

	if len(extra) == 0 {
		return base
	}

	edges := make([]*Edge, 0, len(base)+len(extra))
	edges = append(edges, base...)
	for _, edge := range extra {
		if matchesType(edge, types) {
			edges = append(edges, edge)
		}
	}

	return edges
}

func (s *QueryScope) StationNode(stationRef string) (NodeID, error) {
	return s.graph.StationNode(stationRef)
}

// Close releases every query node back to the graph. Calling it more than once is a no-op.
func (s *QueryScope) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.graph.releaseTransient(s.id, s.order)

	s.nodes = map[NodeID]*Node{}
	s.edges = map[NodeID][]*Edge{}
	s.order = nil

	return err
}
