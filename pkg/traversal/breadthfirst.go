package traversal

import (
	"context"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

// BreadthFirst enumerates every admissible path in order of hops, lazily so
// the caller can stop as soon as it has enough
type BreadthFirst struct {
	expander

	start     journeygraph.NodeID
	queryTime ctdf.TimeOfDay

	started   bool
	queue     []*branch
	current   *branch
	edgeIndex int
}

func NewBreadthFirst(view journeygraph.View, states *States, evaluator *Evaluator, start journeygraph.NodeID, queryTime ctdf.TimeOfDay) *BreadthFirst {
	return &BreadthFirst{
		expander:  expander{view: view, states: states, evaluator: evaluator},
		start:     start,
		queryTime: queryTime,
	}
}

func (t *BreadthFirst) Next(ctx context.Context) (*FoundPath, error) {
	if !t.started {
		t.started = true

		root, err := t.root(t.start, t.queryTime)
		if err != nil {
			return nil, err
		}
		t.queue = append(t.queue, root)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if t.current == nil || t.edgeIndex >= len(t.current.state.Outbound()) {
			if len(t.queue) == 0 {
				return nil, nil
			}

			t.current = t.queue[0]
			t.queue[0] = nil
			t.queue = t.queue[1:]
			t.edgeIndex = 0
			continue
		}

		edge := t.current.state.Outbound()[t.edgeIndex]
		t.edgeIndex++

		child, evaluation, err := t.grow(t.current, edge)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}

		if evaluation == IncludeAndPrune {
			return child.found(), nil
		}

		t.queue = append(t.queue, child)
	}
}
