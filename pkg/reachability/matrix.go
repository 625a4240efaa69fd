package reachability

import (
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/journeyplanner/pkg/journeygraph"
	"github.com/travigo/journeyplanner/pkg/transportdata"
)

// Matrix holds, for every route station, which stations can be reached from it
// by staying on its route or changing at an interchange. It is built once and
// only read afterwards.
type Matrix struct {
	rows     map[journeygraph.NodeID][]bool
	stations map[string]int
}

func BuildMatrix(graph *journeygraph.Graph, repository transportdata.Repository) *Matrix {
	started := time.Now()
	reachable := NewRouteReachable(graph, repository)

	stations := repository.Stations()
	matrix := &Matrix{
		rows:     map[journeygraph.NodeID][]bool{},
		stations: map[string]int{},
	}
	for index, station := range stations {
		matrix.stations[station.PrimaryIdentifier] = index
	}

	routeStations := graph.NodesOfKind(journeygraph.KindRouteStation)
	rows := make([][]bool, len(routeStations))

	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for index, id := range routeStations {
		p.Go(func() {
			node, err := graph.Node(id)
			if err != nil {
				return
			}

			row := make([]bool, len(stations))
			for stationIndex, station := range stations {
				row[stationIndex] = reachable.ReachableWithInterchange(id, station.PrimaryIdentifier, node.RouteRef)
			}
			rows[index] = row
		})
	}
	p.Wait()

	for index, id := range routeStations {
		matrix.rows[id] = rows[index]
	}

	log.Info().
		Int("routestations", len(routeStations)).
		Int("stations", len(stations)).
		Str("duration", time.Since(started).String()).
		Msg("Built reachability matrix")

	return matrix
}

// Reachable is false for anything the matrix was not built with
func (m *Matrix) Reachable(routeStation journeygraph.NodeID, stationRef string) bool {
	row, exists := m.rows[routeStation]
	if !exists {
		return false
	}
	index, exists := m.stations[stationRef]
	if !exists {
		return false
	}

	return row[index]
}

// ReachableAny is true when any of the destinations can be reached
func (m *Matrix) ReachableAny(routeStation journeygraph.NodeID, stationRefs []string) bool {
	for _, stationRef := range stationRefs {
		if m.Reachable(routeStation, stationRef) {
			return true
		}
	}

	return false
}
