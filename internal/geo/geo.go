// Package geo provides geospatial primitives for the TripSentry safety engine.
package geo

import (
	"fmt"
	"math"
)

// DefaultSameAreaThresholdMeters is the distance below which two points are
// considered to be in the same city/district/area.
const DefaultSameAreaThresholdMeters = 5000

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Validate checks that the point is within valid coordinate ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", p.Lon)
	}
	return nil
}

// HaversineDistance calculates the great-circle distance between two points
// in meters.
func HaversineDistance(a, b Point) float64 {
	const earthRadius = 6371000 // meters

	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// SameArea reports whether two points are judged to be in the same area,
// i.e. closer than thresholdMeters along the great circle. The relation is
// symmetric and reflexive. A threshold of zero or below uses
// DefaultSameAreaThresholdMeters.
func SameArea(a, b Point, thresholdMeters float64) bool {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultSameAreaThresholdMeters
	}
	return HaversineDistance(a, b) < thresholdMeters
}
