package reachability

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/travigo/journeyplanner/pkg/journeygraph"
)

var ErrNoRoute = errors.New("no route between nodes")

var scheduleFreeEdges = []journeygraph.EdgeType{
	journeygraph.EdgeEnterPlatform,
	journeygraph.EdgeLeavePlatform,
	journeygraph.EdgeBoard,
	journeygraph.EdgeInterchangeBoard,
	journeygraph.EdgeDepart,
	journeygraph.EdgeInterchangeDepart,
	journeygraph.EdgeOnRoute,
	journeygraph.EdgeWalksTo,
	journeygraph.EdgeWalksFrom,
	journeygraph.EdgeFinishWalk,
}

type costItem struct {
	node journeygraph.NodeID
	cost int
}

type costQueue []costItem

func (q costQueue) Len() int { return len(q) }
func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].node < q[j].node
}
func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x any) {
	*q = append(*q, x.(costItem))
}

func (q *costQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// ApproxCostBetween is the cheapest cost from a to b ignoring the timetable,
// a lower bound on any journey between them rather than an achievable one
func ApproxCostBetween(view journeygraph.View, a journeygraph.NodeID, b journeygraph.NodeID) (int, error) {
	if _, err := view.Node(a); err != nil {
		return 0, err
	}
	if _, err := view.Node(b); err != nil {
		return 0, err
	}

	best := map[journeygraph.NodeID]int{a: 0}
	queue := &costQueue{{node: a, cost: 0}}

	for queue.Len() > 0 {
		current := heap.Pop(queue).(costItem)
		if current.node == b {
			return current.cost, nil
		}
		if current.cost > best[current.node] {
			continue
		}

		for _, edge := range view.OutgoingEdges(current.node, scheduleFreeEdges...) {
			cost := current.cost + edge.Cost
			if existing, seen := best[edge.To]; seen && existing <= cost {
				continue
			}
			best[edge.To] = cost
			heap.Push(queue, costItem{node: edge.To, cost: cost})
		}
	}

	return 0, fmt.Errorf("%w: %d to %d", ErrNoRoute, a, b)
}
