package model

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// UnknownDistance marks a candidate whose distance could not be computed because
// either the booking or the owner has no location. It is lower than any real
// distance so unknown candidates rank first when sorting ascending.
const UnknownDistance = -1.0

// GeoPoint is a WGS84 coordinate in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinate ranges.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return invalid("latitude", fmt.Sprintf("out of range: %v", p.Latitude))
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return invalid("longitude", fmt.Sprintf("out of range: %v", p.Longitude))
	}
	return nil
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceKm returns the distance between two optional points, or UnknownDistance
// when either is missing.
func DistanceKm(a, b *GeoPoint) float64 {
	if a == nil || b == nil {
		return UnknownDistance
	}
	return HaversineKm(*a, *b)
}
