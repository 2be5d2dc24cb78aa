package timesheet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yaro360/timetracker-saas/internal/domain"
	"github.com/yaro360/timetracker-saas/internal/location"
	"github.com/yaro360/timetracker-saas/internal/track"
)

// memStore is an in-memory domain.Store for service tests.
type memStore struct {
	companies map[string]domain.Company
	data      map[string]domain.CompanyData
	saveErr   error
}

func newMemStore() *memStore {
	return &memStore{
		companies: make(map[string]domain.Company),
		data:      make(map[string]domain.CompanyData),
	}
}

func (m *memStore) Load(_ context.Context, companyID string) (domain.CompanyData, error) {
	return m.data[companyID], nil
}

func (m *memStore) SaveUsers(_ context.Context, companyID string, users []domain.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	d := m.data[companyID]
	d.Users = users
	m.data[companyID] = d
	return nil
}

func (m *memStore) SaveJobSites(_ context.Context, companyID string, sites []domain.JobSite) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	d := m.data[companyID]
	d.JobSites = sites
	m.data[companyID] = d
	return nil
}

func (m *memStore) SaveTimeEntries(_ context.Context, companyID string, entries []domain.TimeEntry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	d := m.data[companyID]
	d.TimeEntries = entries
	m.data[companyID] = d
	return nil
}

func (m *memStore) GetCompany(_ context.Context, companyID string) (*domain.Company, error) {
	c, ok := m.companies[companyID]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return &c, nil
}

func (m *memStore) PutCompany(_ context.Context, c domain.Company) error {
	m.companies[c.ID] = c
	return nil
}

type sensorFunc func(ctx context.Context, highAccuracy bool) (domain.Position, error)

func (f sensorFunc) ReadPosition(ctx context.Context, highAccuracy bool) (domain.Position, error) {
	return f(ctx, highAccuracy)
}

func seedStore(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore()
	store.companies["co-1"] = domain.Company{
		ID: "co-1", Name: "Acme Crew", Settings: domain.DefaultCompanySettings(),
	}
	store.data["co-1"] = domain.CompanyData{
		Users: []domain.User{
			{ID: "u1", CompanyID: "co-1", Role: domain.RoleEmployee, Active: true},
		},
		JobSites: []domain.JobSite{
			{ID: "s1", CompanyID: "co-1", Name: "Pier 40",
				Latitude: 40.7295, Longitude: -74.0113, Radius: 150, Active: true},
		},
	}
	return store
}

func atSite(store *memStore) domain.Position {
	site := store.data["co-1"].JobSites[0]
	return domain.Position{Latitude: site.Latitude, Longitude: site.Longitude, Accuracy: 5}
}

// ─── Clock-In Flow ──────────────────────────────────────────────────────────

func TestService_ClockInAt_PersistsEntry(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)

	entry, err := svc.ClockInAt(context.Background(), "co-1", "u1", "s1", atSite(store))
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if entry.Status != domain.StatusClockedIn {
		t.Errorf("status = %q", entry.Status)
	}

	persisted := store.data["co-1"].TimeEntries
	if len(persisted) != 1 || persisted[0].ID != entry.ID {
		t.Fatalf("entry should be persisted after clock-in, got %+v", persisted)
	}
}

func TestService_ClockInAt_UnknownUser(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)

	_, err := svc.ClockInAt(context.Background(), "co-1", "ghost", "s1", atSite(store))
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_ClockIn_FetchesPosition(t *testing.T) {
	store := seedStore(t)
	pos := atSite(store)
	provider := location.NewProvider(sensorFunc(func(context.Context, bool) (domain.Position, error) {
		return pos, nil
	}), nil)
	svc := NewService(store, provider, location.DefaultConfig(), nil, nil)

	entry, err := svc.ClockIn(context.Background(), "co-1", "u1", "s1")
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if entry.JobSiteID != "s1" {
		t.Errorf("entry site = %q", entry.JobSiteID)
	}
}

func TestService_ClockIn_LocationFailureSurfaces(t *testing.T) {
	store := seedStore(t)
	provider := location.NewProvider(sensorFunc(func(context.Context, bool) (domain.Position, error) {
		return domain.Position{}, domain.ErrPermissionDenied
	}), nil)
	svc := NewService(store, provider, location.DefaultConfig(), nil, nil)

	_, err := svc.ClockIn(context.Background(), "co-1", "u1", "s1")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(store.data["co-1"].TimeEntries) != 0 {
		t.Error("location failure must not create an entry")
	}
}

func TestService_ClockIn_NoProvider(t *testing.T) {
	svc := NewService(seedStore(t), nil, location.DefaultConfig(), nil, nil)
	_, err := svc.ClockIn(context.Background(), "co-1", "u1", "s1")
	if !errors.Is(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
}

func TestService_ClockOut_RoundTrip(t *testing.T) {
	store := seedStore(t)
	start := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	current := start
	clock := func() time.Time { return current }
	svc := NewService(store, nil, location.DefaultConfig(), clock, nil)

	entry, err := svc.ClockInAt(context.Background(), "co-1", "u1", "s1", atSite(store))
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}

	current = start.Add(2*time.Hour + 15*time.Minute)
	closed, err := svc.ClockOut(context.Background(), "co-1", entry.ID)
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if closed.TotalHours != 2.25 {
		t.Errorf("TotalHours = %v, want 2.25", closed.TotalHours)
	}

	persisted := store.data["co-1"].TimeEntries[0]
	if persisted.Status != domain.StatusCompleted {
		t.Errorf("persisted status = %q, want completed", persisted.Status)
	}
}

func TestService_OpenEntry(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)
	ctx := context.Background()

	open, err := svc.OpenEntry(ctx, "co-1", "u1")
	if err != nil || open != nil {
		t.Fatalf("expected no open entry, got %v, %v", open, err)
	}

	entry, _ := svc.ClockInAt(ctx, "co-1", "u1", "s1", atSite(store))
	open, err = svc.OpenEntry(ctx, "co-1", "u1")
	if err != nil || open == nil || open.ID != entry.ID {
		t.Fatalf("expected open entry %q, got %v, %v", entry.ID, open, err)
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestService_StatsFlow(t *testing.T) {
	store := seedStore(t)
	start := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	current := start
	clock := func() time.Time { return current }
	svc := NewService(store, nil, location.DefaultConfig(), clock, nil)
	ctx := context.Background()

	entry, _ := svc.ClockInAt(ctx, "co-1", "u1", "s1", atSite(store))
	current = start.Add(4 * time.Hour)
	svc.ClockOut(ctx, "co-1", entry.ID)

	userStats, err := svc.UserStats(ctx, "co-1", "u1")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if userStats.TotalHours != 4 || userStats.WeekHours != 4 {
		t.Errorf("user stats = %+v", userStats)
	}

	companyStats, err := svc.CompanyStats(ctx, "co-1")
	if err != nil {
		t.Fatalf("company stats: %v", err)
	}
	if companyStats.TotalUsers != 1 || companyStats.TotalEntries != 1 || companyStats.TotalHours != 4 {
		t.Errorf("company stats = %+v", companyStats)
	}
	if companyStats.ActiveEntries != 0 {
		t.Errorf("ActiveEntries = %d, want 0", companyStats.ActiveEntries)
	}

	bySite, err := svc.HoursBySite(ctx, "co-1")
	if err != nil {
		t.Fatalf("hours by site: %v", err)
	}
	if bySite["Pier 40"] != 4 {
		t.Errorf("hours by site = %v", bySite)
	}
}

func TestService_HoursBySite_Orphan(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)
	ctx := context.Background()

	entry, _ := svc.ClockInAt(ctx, "co-1", "u1", "s1", atSite(store))
	svc.ClockOut(ctx, "co-1", entry.ID)

	// Deleting the site orphans the entry; aggregation degrades, not fails.
	if err := svc.DeleteJobSite(ctx, "co-1", "s1"); err != nil {
		t.Fatalf("delete site: %v", err)
	}
	bySite, err := svc.HoursBySite(ctx, "co-1")
	if err != nil {
		t.Fatalf("hours by site: %v", err)
	}
	if _, ok := bySite[track.UnknownSiteLabel]; !ok {
		t.Errorf("orphaned hours should appear under %q, got %v", track.UnknownSiteLabel, bySite)
	}
}

// ─── Administration ─────────────────────────────────────────────────────────

func TestService_CreateJobSite(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)
	ctx := context.Background()

	site, err := svc.CreateJobSite(ctx, domain.JobSite{
		CompanyID: "co-1", Name: "Uptown Lot", Latitude: 40.8, Longitude: -73.9,
	})
	if err != nil {
		t.Fatalf("create site: %v", err)
	}
	if site.Radius != 100 {
		t.Errorf("zero radius should take the company default 100, got %d", site.Radius)
	}
	if site.ID == "" || !site.Active {
		t.Errorf("created site = %+v", site)
	}
	if len(store.data["co-1"].JobSites) != 2 {
		t.Errorf("site should be persisted")
	}

	// Validation failures never reach the store.
	_, err = svc.CreateJobSite(ctx, domain.JobSite{CompanyID: "co-1", Name: "Bad", Latitude: 95, Longitude: 0, Radius: 50})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.data["co-1"].JobSites) != 2 {
		t.Error("invalid site must not be persisted")
	}
}

func TestService_UpdateJobSite(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)
	ctx := context.Background()

	site := store.data["co-1"].JobSites[0]
	site.Radius = 300
	updated, err := svc.UpdateJobSite(ctx, site)
	if err != nil {
		t.Fatalf("update site: %v", err)
	}
	if updated.Radius != 300 {
		t.Errorf("radius = %d, want 300", updated.Radius)
	}

	site.ID = "missing"
	if _, err := svc.UpdateJobSite(ctx, site); !errors.Is(err, domain.ErrJobSiteNotFound) {
		t.Fatalf("expected ErrJobSiteNotFound, got %v", err)
	}
}

func TestService_CreateUserAndCompany(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil, location.DefaultConfig(), nil, nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.User{
		CompanyID: "co-1", FirstName: "Dan", LastName: "Reyes",
		Username: "dreyes", Email: "dan@acme.example", Role: domain.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == "" {
		t.Error("user should get an id")
	}

	company, err := svc.CreateCompany(ctx, domain.Company{
		Name: "New Co", Industry: "cleaning", Email: "hi@new.example",
	})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	if company.Settings.DefaultRadius != 100 {
		t.Errorf("company should receive default settings, got %+v", company.Settings)
	}
}
