package reachability

import (
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"golang.org/x/exp/slices"
)

type stationPair struct {
	from string
	to   string
}

// Adjacency is the quickest scheduled run between consecutive stops
type Adjacency struct {
	runTimes map[stationPair]int
}

func BuildAdjacency(repository transportdata.Repository) *Adjacency {
	adjacency := &Adjacency{runTimes: map[stationPair]int{}}

	for _, trip := range repository.Trips() {
		calls := trip.CallsInSequence()
		for i := 0; i+1 < len(calls); i++ {
			pair := stationPair{from: calls[i].StationRef, to: calls[i+1].StationRef}
			cost := calls[i+1].ArrivalTime.RelativeTo(calls[i].DepartureTime)

			if existing, exists := adjacency.runTimes[pair]; !exists || cost < existing {
				adjacency.runTimes[pair] = cost
			}
		}
	}

	return adjacency
}

func (a *Adjacency) Cost(from string, to string) (int, bool) {
	cost, exists := a.runTimes[stationPair{from: from, to: to}]
	return cost, exists
}

// Neighbours are the stations one scheduled stop on from the given station
func (a *Adjacency) Neighbours(from string) []string {
	var neighbours []string
	for pair := range a.runTimes {
		if pair.from == from {
			neighbours = append(neighbours, pair.to)
		}
	}
	slices.Sort(neighbours)

	return neighbours
}

func (a *Adjacency) Len() int {
	return len(a.runTimes)
}
