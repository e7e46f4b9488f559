package geospatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(51.5, -0.12, 51.5, -0.12))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One hundredth of a degree of latitude is ~1112 m.
	d := Haversine(51.50, -0.12, 51.51, -0.12)
	assert.InDelta(t, 1111.95, d, 0.01)
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(51.52, -0.06, 51.50, -0.12)
	b := Haversine(51.50, -0.12, 51.52, -0.06)
	assert.InDelta(t, a, b, 1e-9)
}

func TestRectangleArea_LondonScene(t *testing.T) {
	diagonal := Haversine(51.520, -0.060, 51.500, -0.120)
	edge := Haversine(51.520, -0.060, 51.500, -0.060)

	area := RectangleArea(51.500, -0.120, 51.520, -0.060)

	assert.Equal(t, diagonal*edge, area)
	assert.InDelta(t, 10475354.72, area, 0.01)
}

func TestRectangleArea_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, RectangleArea(51.5, -0.12, 51.5, -0.12))
	// A zero-height rectangle still has a diagonal but no eastern edge.
	assert.Equal(t, 0.0, RectangleArea(51.5, -0.12, 51.5, -0.06))
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(51.505, -0.09, 500)

	assert.Less(t, minLat, 51.505)
	assert.Greater(t, maxLat, 51.505)
	assert.Less(t, minLon, -0.09)
	assert.Greater(t, maxLon, -0.09)

	// The half-height is the radius.
	assert.InDelta(t, 500, Haversine(51.505, -0.09, maxLat, -0.09), 1)
	assert.InDelta(t, maxLat-51.505, 51.505-minLat, 1e-12)
	assert.False(t, math.IsNaN(maxLon))
}

func TestHaversine_Antipodal(t *testing.T) {
	d := Haversine(-1.5, -180, 1.5, 0)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*earthRadiusKm*1000, d, 1)

	area := RectangleArea(-1.5, -180, 1.5, 0)
	assert.False(t, math.IsNaN(area))
	assert.False(t, math.IsInf(area, 0))
}
