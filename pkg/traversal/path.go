package traversal

import (
	"context"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

// FoundPath is a route through the graph that reached a destination
type FoundPath struct {
	Start     journeygraph.NodeID
	Edges     []*journeygraph.Edge
	QueryTime ctdf.TimeOfDay
	Journey   JourneyState
}

func (p *FoundPath) Cost() int {
	return p.Journey.TotalCost()
}

func (p *FoundPath) End() journeygraph.NodeID {
	if len(p.Edges) == 0 {
		return p.Start
	}

	return p.Edges[len(p.Edges)-1].To
}

// PathIterator hands out paths one at a time, returning nil once there are no more
type PathIterator interface {
	Next(ctx context.Context) (*FoundPath, error)
}

// branch is a partial path, sharing its prefix with every other branch that
// grew from the same parent
type branch struct {
	parent  *branch
	via     *journeygraph.Edge
	node    *journeygraph.Node
	state   TraversalState
	journey JourneyState
	depth   int
}

func (b *branch) edges() []*journeygraph.Edge {
	edges := make([]*journeygraph.Edge, b.depth)
	for current := b; current.parent != nil; current = current.parent {
		edges[current.depth-1] = current.via
	}

	return edges
}

// visits is the cycle guard, a branch never goes back through a station or platform
func (b *branch) visits(id journeygraph.NodeID) bool {
	for current := b; current != nil; current = current.parent {
		if current.node.ID == id {
			return true
		}
	}

	return false
}

func (b *branch) root() *branch {
	current := b
	for current.parent != nil {
		current = current.parent
	}

	return current
}

func (b *branch) found() *FoundPath {
	return &FoundPath{
		Start:     b.root().node.ID,
		Edges:     b.edges(),
		QueryTime: b.journey.QueryTime(),
		Journey:   b.journey,
	}
}

// expander grows a branch along one edge, shared by both search orders
type expander struct {
	view      journeygraph.View
	states    *States
	evaluator *Evaluator
}

func (e *expander) root(start journeygraph.NodeID, queryTime ctdf.TimeOfDay) (*branch, error) {
	node, err := e.view.Node(start)
	if err != nil {
		return nil, err
	}

	journey := NewJourneyState(queryTime)
	state, err := e.states.NextState(NotStarted(), node, nil, &journey, 0)
	if err != nil {
		return nil, err
	}

	return &branch{node: node, state: state, journey: journey}, nil
}

// grow returns nil when the edge leads nowhere useful
func (e *expander) grow(parent *branch, edge *journeygraph.Edge) (*branch, Evaluation, error) {
	node, err := e.view.Node(edge.To)
	if err != nil {
		return nil, ExcludeAndPrune, err
	}

	if (node.Kind == journeygraph.KindStation || node.Kind == journeygraph.KindPlatform) && parent.visits(node.ID) {
		return nil, ExcludeAndPrune, nil
	}

	journey := parent.journey
	totalCost := journey.TotalCost() + edge.Cost
	journey.UpdateClock(totalCost)

	evaluation := e.evaluator.Evaluate(node, edge, parent.depth+1, &journey)
	if evaluation == ExcludeAndPrune {
		return nil, evaluation, nil
	}

	state, err := e.states.NextState(parent.state, node, edge, &journey, totalCost)
	if err != nil {
		return nil, ExcludeAndPrune, err
	}

	return &branch{
		parent:  parent,
		via:     edge,
		node:    node,
		state:   state,
		journey: journey,
		depth:   parent.depth + 1,
	}, evaluation, nil
}
