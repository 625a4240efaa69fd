package traversal

import (
	"container/heap"
	"context"

	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

type queued struct {
	branch   *branch
	elapsed  int
	sequence int
}

type branchQueue []queued

func (q branchQueue) Len() int { return len(q) }
func (q branchQueue) Less(i, j int) bool {
	if q[i].elapsed != q[j].elapsed {
		return q[i].elapsed < q[j].elapsed
	}
	if q[i].branch.depth != q[j].branch.depth {
		return q[i].branch.depth < q[j].branch.depth
	}
	return q[i].sequence < q[j].sequence
}
func (q branchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *branchQueue) Push(x any) {
	*q = append(*q, x.(queued))
}

func (q *branchQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

type dominanceKey struct {
	node    journeygraph.NodeID
	tripRef string
	changes int
	rode    bool
}

// ShortestPaths orders the search on minutes elapsed since the query time, so
// paths come out quickest first. Once a node has been reached on a trip with a
// given number of changes any slower arrival in the same situation is dropped.
type ShortestPaths struct {
	expander

	start     journeygraph.NodeID
	queryTime ctdf.TimeOfDay
	limit     int

	started  bool
	found    int
	sequence int
	queue    branchQueue
	best     map[dominanceKey]int
}

func NewShortestPaths(view journeygraph.View, states *States, evaluator *Evaluator, start journeygraph.NodeID, queryTime ctdf.TimeOfDay, limit int) *ShortestPaths {
	return &ShortestPaths{
		expander:  expander{view: view, states: states, evaluator: evaluator},
		start:     start,
		queryTime: queryTime,
		limit:     limit,
		best:      map[dominanceKey]int{},
	}
}

func (t *ShortestPaths) push(b *branch) {
	t.sequence++
	heap.Push(&t.queue, queued{branch: b, elapsed: b.journey.Elapsed(), sequence: t.sequence})
}

func (t *ShortestPaths) dominated(b *branch) bool {
	if t.states.IsDestination(b.node.ID) {
		return false
	}

	key := dominanceKey{node: b.node.ID, tripRef: b.journey.TripRef(), changes: b.journey.Changes(), rode: b.journey.HadVehicleLeg()}
	elapsed := b.journey.Elapsed()

	if best, exists := t.best[key]; exists && best <= elapsed {
		return true
	}
	t.best[key] = elapsed

	return false
}

func (t *ShortestPaths) Next(ctx context.Context) (*FoundPath, error) {
	if !t.started {
		t.started = true

		root, err := t.root(t.start, t.queryTime)
		if err != nil {
			return nil, err
		}
		t.push(root)
	}

	for t.queue.Len() > 0 {
		if t.limit > 0 && t.found >= t.limit {
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := heap.Pop(&t.queue).(queued).branch

		if current.state.Kind == StateDestination || (current.parent != nil && t.states.IsDestination(current.node.ID)) {
			t.found++
			return current.found(), nil
		}

		for _, edge := range current.state.Outbound() {
			child, _, err := t.grow(current, edge)
			if err != nil {
				return nil, err
			}
			if child == nil || t.dominated(child) {
				continue
			}

			t.push(child)
		}
	}

	return nil, nil
}
