// Package geo contains pure geographic computation helpers used for
// proximity matching of bookings and drivers.
package geo

import (
	"math"

	"freight/internal/domain"
)

const earthRadiusKm = 6371.0

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the great-circle distance in kilometres between two
// points using the haversine formula. Non-finite inputs yield NaN; callers
// validate coordinates before calling.
func DistanceKm(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// FilterWithinRadius keeps bookings whose pickup point lies within radiusKm
// of origin, inclusive at the boundary. Input ordering is preserved; the
// caller is expected to pass candidates already ordered by creation time
// descending.
func FilterWithinRadius(bookings []*domain.Booking, origin Coordinate, radiusKm float64) []*domain.Booking {
	result := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		pickup := Coordinate{Lat: b.Pickup.Lat, Lng: b.Pickup.Lng}
		if DistanceKm(origin, pickup) <= radiusKm {
			result = append(result, b)
		}
	}
	return result
}

// ValidCoordinate reports whether c is a finite, in-range lat/lng pair.
func ValidCoordinate(c Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
