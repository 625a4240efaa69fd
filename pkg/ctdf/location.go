package ctdf

import (
	"fmt"
	"math"

	"github.com/paulcager/osgridref"
)

const (
	earthRadiusKM    = 6371.0
	kilometresToMile = 0.621371
)

type LatLong struct {
	Latitude  float64
	Longitude float64
}

func (l LatLong) IsValid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180 &&
		!(l.Latitude == 0 && l.Longitude == 0)
}

func (l LatLong) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}

// DistanceKM is the great circle distance using the haversine formula
func (l LatLong) DistanceKM(other LatLong) float64 {
	lat1 := l.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - l.Latitude) * math.Pi / 180
	dLon := (other.Longitude - l.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

func (l LatLong) DistanceMiles(other LatLong) float64 {
	return l.DistanceKM(other) * kilometresToMile
}

// WalkingMinutes rounds up to whole minutes
func (l LatLong) WalkingMinutes(other LatLong, milesPerHour float64) int {
	if milesPerHour <= 0 {
		return 0
	}

	return int(math.Ceil(l.DistanceMiles(other) / milesPerHour * 60))
}

// LatLongFromGridRef converts an OS national grid easting/northing pair
func LatLongFromGridRef(easting string, northing string) (LatLong, error) {
	gridRef, err := osgridref.ParseOsGridRef(fmt.Sprintf("%s,%s", easting, northing))
	if err != nil {
		return LatLong{}, err
	}

	lat, lon := gridRef.ToLatLon()

	return LatLong{Latitude: lat, Longitude: lon}, nil
}
