package track

import (
	"time"

	"github.com/yaro360/timetracker-saas/internal/domain"
)

// ─── Stats Aggregation ──────────────────────────────────────────────────────
// Pure functions over an entry snapshot plus a reference time. These are
// total over well-formed input: a bad site reference degrades to the
// UnknownSiteLabel instead of failing the whole aggregation, so one orphaned
// entry never blanks a dashboard.

// UnknownSiteLabel groups hours whose job-site reference cannot be resolved
// (e.g. the site was deleted; entries are deliberately left orphaned).
const UnknownSiteLabel = "Unknown Site"

// Window is an inclusive calendar time window.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// TotalHours sums the TotalHours fields. Open entries contribute 0 — they
// are not estimated against the current instant.
func TotalHours(entries []domain.TimeEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.TotalHours
	}
	return total
}

// HoursInWindow sums hours for entries created inside the window,
// keyed on entry creation time (equal to clock-in time).
func HoursInWindow(entries []domain.TimeEntry, w Window) float64 {
	var total float64
	for _, e := range entries {
		if w.Contains(e.CreatedAt) {
			total += e.TotalHours
		}
	}
	return total
}

// WeekWindow returns the calendar week containing ref: Sunday 00:00:00.000
// through Saturday 23:59:59.999, in ref's location.
func WeekWindow(ref time.Time) Window {
	daysSinceSunday := int(ref.Weekday())
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()).
		AddDate(0, 0, -daysSinceSunday)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return Window{Start: start, End: end}
}

// MonthWindow returns the first through last calendar day of the month
// containing ref, in ref's location.
func MonthWindow(ref time.Time) Window {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Window{Start: start, End: end}
}

// HoursByJobSite groups total hours by resolved site name. Entries whose
// site id matches nothing in sites land under UnknownSiteLabel.
func HoursByJobSite(entries []domain.TimeEntry, sites []domain.JobSite) map[string]float64 {
	names := make(map[string]string, len(sites))
	for _, s := range sites {
		names[s.ID] = s.Name
	}

	out := make(map[string]float64)
	for _, e := range entries {
		name, ok := names[e.JobSiteID]
		if !ok {
			name = UnknownSiteLabel
		}
		out[name] += e.TotalHours
	}
	return out
}

// CompanyStats is the company dashboard summary.
type CompanyStats struct {
	TotalUsers    int     `json:"total_users"`
	TotalJobSites int     `json:"total_job_sites"`
	TotalEntries  int     `json:"total_entries"`
	TotalHours    float64 `json:"total_hours"`
	ActiveEntries int     `json:"active_entries"`
}

// AggregateCompany computes counts and totals for one company's collections.
func AggregateCompany(users []domain.User, sites []domain.JobSite, entries []domain.TimeEntry) CompanyStats {
	stats := CompanyStats{
		TotalUsers:    len(users),
		TotalJobSites: len(sites),
		TotalEntries:  len(entries),
		TotalHours:    domain.Round2(TotalHours(entries)),
	}
	for _, e := range entries {
		if e.Status == domain.StatusClockedIn {
			stats.ActiveEntries++
		}
	}
	return stats
}

// UserStats is the per-user dashboard summary over week/month/all-time.
type UserStats struct {
	TotalEntries int     `json:"total_entries"`
	TotalHours   float64 `json:"total_hours"`
	ActiveEntry  bool    `json:"active_entry"`
	WeekHours    float64 `json:"week_hours"`
	MonthHours   float64 `json:"month_hours"`
}

// AggregateUser computes one user's totals from their entry slice, with
// week and month windows anchored at ref.
func AggregateUser(entries []domain.TimeEntry, ref time.Time) UserStats {
	stats := UserStats{
		TotalEntries: len(entries),
		TotalHours:   domain.Round2(TotalHours(entries)),
		WeekHours:    domain.Round2(HoursInWindow(entries, WeekWindow(ref))),
		MonthHours:   domain.Round2(HoursInWindow(entries, MonthWindow(ref))),
	}
	for _, e := range entries {
		if e.Status == domain.StatusClockedIn {
			stats.ActiveEntry = true
			break
		}
	}
	return stats
}
