package reachability

import (
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/transportdata"
)

// RouteReachable follows a single route through the graph without looking at the timetable
type RouteReachable struct {
	graph      *journeygraph.Graph
	repository transportdata.Repository
}

func NewRouteReachable(graph *journeygraph.Graph, repository transportdata.Repository) *RouteReachable {
	return &RouteReachable{
		graph:      graph,
		repository: repository,
	}
}

// ReachableWithInterchange is true when staying on routeRef from start gets to
// endStationRef, or to an interchange where another route could
func (r *RouteReachable) ReachableWithInterchange(start journeygraph.NodeID, endStationRef string, routeRef string) bool {
	startNode, err := r.graph.Node(start)
	if err != nil {
		return false
	}
	if startNode.StationRef == endStationRef {
		return true
	}

	visited := map[journeygraph.NodeID]bool{start: true}
	queue := []*journeygraph.Node{startNode}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.StationRef == endStationRef || r.isInterchange(current.StationRef) {
			return true
		}

		for _, edge := range r.graph.OutgoingEdges(current.ID, journeygraph.EdgeOnRoute) {
			if edge.RouteRef != routeRef || visited[edge.To] {
				continue
			}
			visited[edge.To] = true

			next, err := r.graph.Node(edge.To)
			if err != nil {
				continue
			}
			queue = append(queue, next)
		}
	}

	return false
}

func (r *RouteReachable) isInterchange(stationRef string) bool {
	station, err := r.repository.GetStation(stationRef)
	if err != nil {
		return false
	}

	return station.IsInterchange
}

// RoutesBetweenAdjacentStations lists the routes calling at a and then directly at b
func (r *RouteReachable) RoutesBetweenAdjacentStations(a string, b string) []*ctdf.Route {
	station, err := r.repository.GetStation(a)
	if err != nil {
		return nil
	}

	var routes []*ctdf.Route
	for _, routeRef := range station.Routes {
		from, err := r.graph.RouteStationNode(ctdf.RouteStationIdentifier(routeRef, a))
		if err != nil {
			continue
		}

		for _, edge := range r.graph.OutgoingEdges(from, journeygraph.EdgeOnRoute) {
			next, err := r.graph.Node(edge.To)
			if err != nil || next.StationRef != b {
				continue
			}

			if route, err := r.repository.GetRoute(routeRef); err == nil {
				routes = append(routes, route)
			}
			break
		}
	}

	return routes
}
