package track

import (
	"errors"

	"github.com/yaro360/timetracker-saas/internal/domain"
)

// Ledger owns one company's time-entry collection and enforces the
// clock-in/clock-out state machine:
//
//	NoActiveEntry → (clock-in) → ClockedIn → (clock-out) → NoActiveEntry
//
// Per user, at most one entry is clocked_in at any time, system-wide.
// The check is check-then-act against the data this ledger observes —
// last-writer-wins across devices, no distributed coordination. A second
// device racing on a shared store can violate the invariant; that is a
// documented property of the design, not something the ledger papers over.
//
// The ledger is not safe for concurrent use; each client instance runs one
// logical thread of control, and callers persist Entries() after mutations.
type Ledger struct {
	companyID string
	sites     []domain.JobSite
	entries   []domain.TimeEntry
	now       domain.Clock
}

// NewLedger builds a ledger over a company's site and entry collections.
// The caller supplies company-filtered collections; sites belonging to a
// different company are treated as absent.
func NewLedger(companyID string, sites []domain.JobSite, entries []domain.TimeEntry, now domain.Clock) *Ledger {
	return &Ledger{
		companyID: companyID,
		sites:     sites,
		entries:   entries,
		now:       now,
	}
}

// siteByID resolves a clock-in target within this company's scope.
// A site carrying a foreign CompanyID is rejected as not found: cross-company
// references are never admitted even if the raw id matches.
func (l *Ledger) siteByID(id string) (domain.JobSite, bool) {
	for _, s := range l.sites {
		if s.ID == id && (s.CompanyID == "" || s.CompanyID == l.companyID) {
			return s, true
		}
	}
	return domain.JobSite{}, false
}

// ClockIn opens a new time entry for the user at the given site, provided
// the position passes the geofence and the user holds no open entry.
func (l *Ledger) ClockIn(userID, jobSiteID string, pos domain.Position) (*domain.TimeEntry, error) {
	site, ok := l.siteByID(jobSiteID)
	if !ok {
		return nil, domain.ErrJobSiteNotFound
	}

	if err := AuthorizeClockIn(pos, site); err != nil {
		return nil, err
	}

	// One open entry per user system-wide, regardless of which site the
	// new attempt targets.
	if _, open := l.OpenEntry(userID); open {
		return nil, domain.ErrAlreadyClockedIn
	}

	now := l.now()
	entry := domain.TimeEntry{
		ID:          domain.NewID(),
		UserID:      userID,
		JobSiteID:   site.ID,
		CompanyID:   l.companyID,
		ClockInTime: now,
		TotalHours:  0,
		Status:      domain.StatusClockedIn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.entries = append(l.entries, entry)
	return &entry, nil
}

// ClockOut closes an open entry. Closing is a one-way transition; a second
// close on the same entry is rejected with ErrNotClockedIn rather than
// silently accepted.
func (l *Ledger) ClockOut(entryID string) (*domain.TimeEntry, error) {
	for i := range l.entries {
		if l.entries[i].ID != entryID {
			continue
		}
		if l.entries[i].Status != domain.StatusClockedIn {
			return nil, domain.ErrNotClockedIn
		}

		now := l.now()
		out := now
		l.entries[i].ClockOutTime = &out
		l.entries[i].TotalHours = domain.HoursBetween(l.entries[i].ClockInTime, out)
		l.entries[i].Status = domain.StatusCompleted
		l.entries[i].UpdatedAt = now

		entry := l.entries[i]
		return &entry, nil
	}
	return nil, domain.ErrEntryNotFound
}

// OpenEntry returns the user's clocked_in entry, if any. At most one exists
// by invariant.
func (l *Ledger) OpenEntry(userID string) (*domain.TimeEntry, bool) {
	for i := range l.entries {
		if l.entries[i].UserID == userID && l.entries[i].Status == domain.StatusClockedIn {
			entry := l.entries[i]
			return &entry, true
		}
	}
	return nil, false
}

// EntriesForUser returns all of the user's entries regardless of status,
// in insertion order. Display ordering is a presentation concern.
func (l *Ledger) EntriesForUser(userID string) []domain.TimeEntry {
	var out []domain.TimeEntry
	for _, e := range l.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns the full collection snapshot for persistence.
func (l *Ledger) Entries() []domain.TimeEntry {
	return l.entries
}

// IsOutOfRange reports whether err is a geofence rejection. Callers should
// treat it as a normal negative result, not a system failure.
func IsOutOfRange(err error) (*domain.OutOfRangeError, bool) {
	var oor *domain.OutOfRangeError
	if errors.As(err, &oor) {
		return oor, true
	}
	return nil, false
}
