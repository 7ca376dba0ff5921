// Package geo computes great-circle distances for scan proximity checks.
package geo

import "math"

const earthRadiusKm = 6371

// Distance returns the Haversine great-circle distance between two
// points in meters.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c * 1000
}

func toRadians(deg float64) float64 { return deg * (math.Pi / 180) }

// Verdict is the result of a proximity check.
type Verdict struct {
	OK             bool
	DistanceMeters float64
	MaxMeters      float64
}

// ValidateProximity checks whether the caller is within maxMeters of
// the event. Callers must only invoke this when both sides supplied
// coordinates: a missing geolocation on either side skips the check
// entirely (treated as pass). That skip is a deliberate usability
// trade-off, not a security guarantee.
func ValidateProximity(userLat, userLng, eventLat, eventLng, maxMeters float64) Verdict {
	d := Distance(userLat, userLng, eventLat, eventLng)
	return Verdict{OK: d <= maxMeters, DistanceMeters: d, MaxMeters: maxMeters}
}

// ValidCoordinates reports whether a lat/lng pair is in range.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
