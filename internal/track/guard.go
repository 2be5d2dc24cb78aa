// Package track implements the geofenced time-tracking engine: admission
// control for clock-in attempts, the time-entry ledger and its state
// machine, and derived hour statistics.
package track

import (
	"math"

	"github.com/yaro360/timetracker-saas/internal/domain"
	"github.com/yaro360/timetracker-saas/internal/geo"
)

// AuthorizeClockIn gates a clock-in attempt on physical proximity.
// It returns nil when the position lies inside the site's geofence
// (inclusive boundary) and an *domain.OutOfRangeError carrying the
// measured distance otherwise.
//
// The function is a pure decision over its inputs: it mutates nothing and
// performs no location fetch of its own. The caller obtains the position
// first, which keeps this testable with synthetic coordinates.
func AuthorizeClockIn(pos domain.Position, site domain.JobSite) error {
	distance := geo.DistanceToSite(pos, site)
	if distance <= float64(site.Radius) {
		return nil
	}
	return &domain.OutOfRangeError{
		Distance: int(math.Round(distance)),
		Radius:   site.Radius,
		SiteName: site.Name,
	}
}

// SiteStatus is a per-site proximity report for dashboard display.
type SiteStatus struct {
	Site     domain.JobSite `json:"site"`
	Distance int            `json:"distance"` // meters, rounded
	InRange  bool           `json:"in_range"`
	Message  string         `json:"message"`
}

// StatusForSites reports the user's proximity to each supplied site.
func StatusForSites(pos domain.Position, sites []domain.JobSite) []SiteStatus {
	out := make([]SiteStatus, 0, len(sites))
	for _, site := range sites {
		d := geo.DistanceToSite(pos, site)
		st := SiteStatus{
			Site:     site,
			Distance: int(math.Round(d)),
			InRange:  d <= float64(site.Radius),
		}
		if st.InRange {
			st.Message = "In range (" + geo.FormatDistance(d) + ")"
		} else {
			st.Message = "Out of range (" + geo.FormatDistance(d) + ")"
		}
		out = append(out, st)
	}
	return out
}
