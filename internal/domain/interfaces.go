package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// CompanyData is one company's complete collection snapshot, as handed
// back and forth across the persistence boundary.
type CompanyData struct {
	Users       []User
	JobSites    []JobSite
	TimeEntries []TimeEntry
}

// Store abstracts the persistence substrate as a key-collection store
// scoped by company. The core never talks to storage from inside its pure
// layers; ledger mutations must be followed by a caller-issued save.
type Store interface {
	// Load returns the full collection snapshot for a company.
	Load(ctx context.Context, companyID string) (CompanyData, error)

	// SaveUsers, SaveJobSites, and SaveTimeEntries replace one named
	// collection for the company wholesale.
	SaveUsers(ctx context.Context, companyID string, users []User) error
	SaveJobSites(ctx context.Context, companyID string, sites []JobSite) error
	SaveTimeEntries(ctx context.Context, companyID string, entries []TimeEntry) error

	// Company aggregate lifecycle.
	GetCompany(ctx context.Context, companyID string) (*Company, error)
	PutCompany(ctx context.Context, c Company) error
}

// Sensor abstracts the underlying device location capability. A nil sensor
// means the host platform offers no location capability at all.
type Sensor interface {
	// ReadPosition obtains one position fix. It must honor ctx cancellation;
	// the provider bounds it with the configured timeout.
	ReadPosition(ctx context.Context, highAccuracy bool) (Position, error)
}

// Clock supplies "now" so hour calculations are deterministic in tests.
type Clock func() time.Time
