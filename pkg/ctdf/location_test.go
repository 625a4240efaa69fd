package ctdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert := assert.New(t)

	a := LatLong{Latitude: 53.0, Longitude: -2.0}
	b := LatLong{Latitude: 54.0, Longitude: -2.0}

	assert.InDelta(111.19, a.DistanceKM(b), 0.01)
	assert.InDelta(69.09, a.DistanceMiles(b), 0.01)
	assert.InDelta(a.DistanceKM(b), b.DistanceKM(a), 0.0001)
	assert.Equal(0.0, a.DistanceKM(a))
}

func TestWalkingMinutesRoundsUp(t *testing.T) {
	assert := assert.New(t)

	a := LatLong{Latitude: 53.0, Longitude: -2.0}
	b := LatLong{Latitude: 53.01, Longitude: -2.0}

	assert.Equal(14, a.WalkingMinutes(b, 3.0))
	assert.Equal(0, a.WalkingMinutes(a, 3.0))
	assert.Equal(0, a.WalkingMinutes(b, 0))
}

func TestLatLongValidity(t *testing.T) {
	assert.True(t, LatLong{Latitude: 53.4, Longitude: -2.2}.IsValid())
	assert.False(t, LatLong{}.IsValid())
	assert.False(t, LatLong{Latitude: 91, Longitude: 0.1}.IsValid())
}

func TestLatLongFromGridRef(t *testing.T) {
	location, err := LatLongFromGridRef("383900", "398000")

	assert.NoError(t, err)
	assert.InDelta(t, 53.48, location.Latitude, 0.05)
	assert.InDelta(t, -2.24, location.Longitude, 0.05)
}
