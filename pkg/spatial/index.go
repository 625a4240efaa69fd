package spatial

import (
	"sort"

	"github.com/kyroy/kdtree"
	"github.com/travigo/journeyplanner/pkg/ctdf"
	"github.com/travigo/journeyplanner/pkg/transportdata"
	"github.com/travigo/journeyplanner/pkg/util"
)

// The tree works on raw degrees so it is asked for more candidates than needed
// before they are ranked by great circle distance
const candidateFactor = 4

type stationPoint struct {
	station *ctdf.Station
}

func (p *stationPoint) Dimensions() int {
	return 2
}

func (p *stationPoint) Dimension(i int) float64 {
	switch i {
	case 0:
		return p.station.Location.Latitude
	case 1:
		return p.station.Location.Longitude
	default:
		panic("invalid dimension")
	}
}

type queryPoint ctdf.LatLong

func (p queryPoint) Dimensions() int {
	return 2
}

func (p queryPoint) Dimension(i int) float64 {
	switch i {
	case 0:
		return p.Latitude
	case 1:
		return p.Longitude
	default:
		panic("invalid dimension")
	}
}

type StationWalk struct {
	Station    *ctdf.Station
	DistanceKM float64
	Cost       int
}

// StationIndex finds the stations nearest to a point
type StationIndex struct {
	tree *kdtree.KDTree
	size int
}

func NewStationIndex(repository transportdata.Repository) *StationIndex {
	var points []kdtree.Point
	for _, station := range repository.Stations() {
		if !station.Location.IsValid() {
			continue
		}
		points = append(points, &stationPoint{station: station})
	}

	return &StationIndex{
		tree: kdtree.New(points),
		size: len(points),
	}
}

func (i *StationIndex) Len() int {
	return i.size
}

// Nearest returns up to count stations within rangeKM of location, closest
// first, with the minutes needed to walk to each at walkingMPH
func (i *StationIndex) Nearest(location ctdf.LatLong, count int, rangeKM float64, walkingMPH float64) []StationWalk {
	if i.size == 0 || count <= 0 {
		return nil
	}

	candidates := count * candidateFactor
	if candidates > i.size {
		candidates = i.size
	}

	var walks []StationWalk
	for _, point := range i.tree.KNN(queryPoint(location), candidates) {
		station := point.(*stationPoint).station

		walks = append(walks, StationWalk{
			Station:    station,
			DistanceKM: location.DistanceKM(station.Location),
			Cost:       location.WalkingMinutes(station.Location, walkingMPH),
		})
	}

	util.InPlaceFilter(&walks, func(walk StationWalk) bool {
		return walk.DistanceKM <= rangeKM
	})

	sort.SliceStable(walks, func(a, b int) bool {
		if walks[a].DistanceKM != walks[b].DistanceKM {
			return walks[a].DistanceKM < walks[b].DistanceKM
		}
		return walks[a].Station.PrimaryIdentifier < walks[b].Station.PrimaryIdentifier
	})

	if len(walks) > count {
		walks = walks[:count]
	}

	return walks
}
