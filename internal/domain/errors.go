package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. All core operations
// return explicit outcomes; nothing crosses the boundary as a panic.

var (
	// Lookup errors
	ErrCompanyNotFound = errors.New("company not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrJobSiteNotFound = errors.New("job site not found")
	ErrEntryNotFound   = errors.New("time entry not found")

	// State-invariant violations. Surfaced to the caller, never silently
	// ignored and never auto-corrected — the engine does not force-close
	// a stale open entry on the caller's behalf.
	ErrAlreadyClockedIn = errors.New("user already has an open time entry")
	ErrNotClockedIn     = errors.New("time entry is not clocked in")

	// Location capability errors. All recoverable by user retry.
	ErrCapabilityUnavailable = errors.New("location capability is not available")
	ErrPermissionDenied      = errors.New("location access denied by user")
	ErrPositionUnavailable   = errors.New("location information is unavailable")
	ErrLocationTimeout       = errors.New("location request timed out")
)

// OutOfRangeError is the geofence rejection: an expected, frequent,
// non-exceptional outcome. It carries what the caller needs to render
// "You are Nm away from SITE; get within Rm."
type OutOfRangeError struct {
	Distance int    // measured distance, rounded to the nearest meter
	Radius   int    // site's geofence radius in meters
	SiteName string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: %dm away from %q, must be within %dm",
		e.Distance, e.SiteName, e.Radius)
}

// Is lets errors.Is match any OutOfRangeError regardless of distance.
func (e *OutOfRangeError) Is(target error) bool {
	_, ok := target.(*OutOfRangeError)
	return ok
}

// ErrOutOfRange is the match target for errors.Is on geofence rejections.
var ErrOutOfRange = &OutOfRangeError{}

// ValidationError aggregates boundary validation failures for one record.
// Invalid input is rejected before it reaches the geo or ledger layers,
// never silently clamped.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "validation failed: " + e.Problems[0]
	}
	return fmt.Sprintf("validation failed: %d problems, first: %s",
		len(e.Problems), e.Problems[0])
}

// Is lets errors.Is match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ErrValidation is the match target for errors.Is on validation failures.
var ErrValidation = &ValidationError{}
