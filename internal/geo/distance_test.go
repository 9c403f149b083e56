package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Austin to Dallas.
	d := DistanceKm(30.2672, -97.7431, 32.7767, -96.7970)
	assert.InDelta(t, 290, d, 10, "Austin-Dallas should be ~290km")

	// Pittsburg TX to Dallas.
	d = DistanceKm(32.9954, -94.9652, 32.7767, -96.7970)
	assert.InDelta(t, 172, d, 5)
}

func TestDistanceKmZero(t *testing.T) {
	assert.InDelta(t, 0, DistanceKm(30.0, -97.0, 30.0, -97.0), 0.001)
	assert.InDelta(t, 0, DistanceKm(0, 0, 0, 0), 0.001)
	assert.InDelta(t, 0, DistanceKm(-90, 180, -90, 180), 0.001)
}

func TestDistanceKmSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{30.2672, -97.7431, 32.7767, -96.7970},
		{32.9954, -94.9652, 33.0, -95.0},
		{51.5074, -0.1278, 40.7128, -74.0060},
		{-33.8688, 151.2093, 35.6762, 139.6503},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
		assert.GreaterOrEqual(t, ab, 0.0)
	}
}

func TestDistanceKmAntipodal(t *testing.T) {
	// Half the Earth's circumference, ~20015 km.
	d := DistanceKm(0, 0, 0, 180)
	assert.InDelta(t, 20015, d, 5)
}
