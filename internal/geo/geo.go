// Package geo implements great-circle distance math for geofence checks.
// All functions are pure; inputs are WGS-84 degrees, outputs are meters.
package geo

import (
	"fmt"
	"math"

	"github.com/yaro360/timetracker-saas/internal/domain"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine (great-circle) distance in meters
// between two coordinate pairs. Out-of-range inputs are not clamped here;
// the persistence boundary guarantees stored coordinates are in range.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IsWithinRadius reports whether the point lies inside the site's geofence.
// The boundary is inclusive: a point at exactly the radius is in range.
func IsWithinRadius(lat, lon float64, site domain.JobSite) bool {
	return DistanceMeters(lat, lon, site.Latitude, site.Longitude) <= float64(site.Radius)
}

// DistanceToSite returns the distance from a position to a site's center.
func DistanceToSite(pos domain.Position, site domain.JobSite) float64 {
	return DistanceMeters(pos.Latitude, pos.Longitude, site.Latitude, site.Longitude)
}

// FormatDistance renders a distance for display: "340m" under a kilometer,
// "1.2km" above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

// AccuracyLevel classifies a GPS accuracy reading in meters.
type AccuracyLevel string

const (
	AccuracyExcellent AccuracyLevel = "excellent"
	AccuracyGood      AccuracyLevel = "good"
	AccuracyFair      AccuracyLevel = "fair"
	AccuracyPoor      AccuracyLevel = "poor"
)

// ClassifyAccuracy buckets an accuracy radius for UI display.
func ClassifyAccuracy(accuracyMeters float64) AccuracyLevel {
	switch {
	case accuracyMeters <= 10:
		return AccuracyExcellent
	case accuracyMeters <= 50:
		return AccuracyGood
	case accuracyMeters <= 100:
		return AccuracyFair
	default:
		return AccuracyPoor
	}
}
