// Package geo provides the distance and bounds math used to bias geocoding
// requests and to rank candidate matches by proximity.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// kmPerDegree approximates one degree of latitude in kilometers.
	kmPerDegree = 111.0
)

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate creates a Coordinate.
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lng}
}

// Valid reports whether both components are finite and within range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Bounds is a rectangular latitude/longitude box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// String serializes the box in the provider's "south,west|north,east" form.
func (b Bounds) String() string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", b.South, b.West, b.North, b.East)
}

// HaversineDistanceKm returns the great-circle distance between a and b in km.
func HaversineDistanceKm(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	// Rounding can push sqrt(h) fractionally above 1 near antipodal points.
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundsFromCenter builds an approximate box extending kmRadius in every
// direction from center. The result is not a circle; it is only a bias hint.
func BoundsFromCenter(center Coordinate, kmRadius float64) Bounds {
	latDelta := kmRadius / kmPerDegree

	cosLat := math.Cos(toRadians(center.Latitude))
	if cosLat == 0 {
		cosLat = 1
	}
	lngDelta := kmRadius / (kmPerDegree * cosLat)

	return Bounds{
		South: center.Latitude - latDelta,
		West:  center.Longitude - lngDelta,
		North: center.Latitude + latDelta,
		East:  center.Longitude + lngDelta,
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
