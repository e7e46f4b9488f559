package domain

import (
	"fmt"
	"math"
)

// LatLng represents a geographic coordinate (WGS 84).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds represents an axis-aligned geographic rectangle.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// BoundsOf returns the smallest bounds containing both points, regardless of
// which corner each point is.
func BoundsOf(a, b LatLng) Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: math.Min(a.Lat, b.Lat), Lng: math.Min(a.Lng, b.Lng)},
		NorthEast: LatLng{Lat: math.Max(a.Lat, b.Lat), Lng: math.Max(a.Lng, b.Lng)},
	}
}

// EWKT renders the bounds as a closed polygon ring in EPSG:4326, the form the
// import pipeline queries its download services with.
func (b Bounds) EWKT() string {
	sw, ne := b.SouthWest, b.NorthEast
	return fmt.Sprintf("SRID=4326;POLYGON((%[1]f %[2]f,%[3]f %[2]f,%[3]f %[4]f,%[1]f %[4]f,%[1]f %[2]f))",
		sw.Lng, sw.Lat, ne.Lng, ne.Lat)
}
