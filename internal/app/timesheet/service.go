// Package timesheet orchestrates the clock-in/clock-out flow: it loads a
// company's collections from the store, runs the geofenced ledger over
// them, and persists the result. The location fetch completes fully before
// any ledger mutation begins, so no stale read spans a suspension point.
package timesheet

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yaro360/timetracker-saas/internal/domain"
	"github.com/yaro360/timetracker-saas/internal/infra/metrics"
	"github.com/yaro360/timetracker-saas/internal/location"
	"github.com/yaro360/timetracker-saas/internal/track"
)

// Service is the application-level timesheet facade.
type Service struct {
	store    domain.Store
	provider *location.Provider
	locCfg   location.Config
	now      domain.Clock
	log      *zap.Logger
}

// NewService wires the timesheet service. provider may be nil when every
// clock-in supplies a client-reported position; now may be nil for
// wall-clock time.
func NewService(store domain.Store, provider *location.Provider, locCfg location.Config, now domain.Clock, log *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, provider: provider, locCfg: locCfg, now: now, log: log}
}

// ─── Clock In / Out ─────────────────────────────────────────────────────────

// ClockIn fetches the device's current position and opens a time entry at
// the given site. Location failures surface to the caller for retry; no
// fallback position is ever substituted.
func (s *Service) ClockIn(ctx context.Context, companyID, userID, jobSiteID string) (*domain.TimeEntry, error) {
	if s.provider == nil {
		return nil, domain.ErrCapabilityUnavailable
	}

	start := time.Now()
	pos, err := s.provider.GetCurrentLocation(ctx, s.locCfg)
	metrics.LocationFetchSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LocationErrors.WithLabelValues(locationErrorKind(err)).Inc()
		metrics.Rejections.WithLabelValues(metrics.CauseLocation).Inc()
		return nil, err
	}

	return s.ClockInAt(ctx, companyID, userID, jobSiteID, pos)
}

// ClockInAt opens a time entry using a caller-supplied position (the
// device claims its own GPS location; there is no server-side clock or
// tamper resistance).
func (s *Service) ClockInAt(ctx context.Context, companyID, userID, jobSiteID string, pos domain.Position) (*domain.TimeEntry, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !userInCompany(data.Users, userID) {
		return nil, domain.ErrUserNotFound
	}

	ledger := track.NewLedger(companyID, data.JobSites, data.TimeEntries, s.now)
	entry, err := ledger.ClockIn(userID, jobSiteID, pos)
	if err != nil {
		metrics.Rejections.WithLabelValues(rejectionCause(err)).Inc()
		s.log.Info("clock-in rejected",
			zap.String("user_id", userID),
			zap.String("job_site_id", jobSiteID),
			zap.Error(err))
		return nil, err
	}

	if err := s.store.SaveTimeEntries(ctx, companyID, ledger.Entries()); err != nil {
		return nil, err
	}

	metrics.ClockIns.WithLabelValues(siteName(data.JobSites, jobSiteID)).Inc()
	metrics.ActiveEntries.Inc()
	s.log.Info("clocked in",
		zap.String("user_id", userID),
		zap.String("job_site_id", jobSiteID),
		zap.String("entry_id", entry.ID))
	return entry, nil
}

// ClockOut closes the given open entry and persists the ledger.
func (s *Service) ClockOut(ctx context.Context, companyID, entryID string) (*domain.TimeEntry, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}

	ledger := track.NewLedger(companyID, data.JobSites, data.TimeEntries, s.now)
	entry, err := ledger.ClockOut(entryID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveTimeEntries(ctx, companyID, ledger.Entries()); err != nil {
		return nil, err
	}

	metrics.ClockOuts.Inc()
	metrics.ActiveEntries.Dec()
	s.log.Info("clocked out",
		zap.String("entry_id", entry.ID),
		zap.Float64("total_hours", entry.TotalHours))
	return entry, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// OpenEntry returns the user's active entry, if any.
func (s *Service) OpenEntry(ctx context.Context, companyID, userID string) (*domain.TimeEntry, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ledger := track.NewLedger(companyID, data.JobSites, data.TimeEntries, s.now)
	entry, ok := ledger.OpenEntry(userID)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// EntriesForUser returns all of a user's entries in insertion order.
func (s *Service) EntriesForUser(ctx context.Context, companyID, userID string) ([]domain.TimeEntry, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ledger := track.NewLedger(companyID, data.JobSites, data.TimeEntries, s.now)
	return ledger.EntriesForUser(userID), nil
}

// UserStats aggregates one user's hours over week/month/all-time windows.
func (s *Service) UserStats(ctx context.Context, companyID, userID string) (track.UserStats, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return track.UserStats{}, err
	}
	ledger := track.NewLedger(companyID, data.JobSites, data.TimeEntries, s.now)
	return track.AggregateUser(ledger.EntriesForUser(userID), s.now()), nil
}

// CompanyStats aggregates a company's dashboard counters.
func (s *Service) CompanyStats(ctx context.Context, companyID string) (track.CompanyStats, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return track.CompanyStats{}, err
	}
	return track.AggregateCompany(data.Users, data.JobSites, data.TimeEntries), nil
}

// HoursBySite groups a company's hours by resolved site name; orphaned
// entries land under the Unknown Site label.
func (s *Service) HoursBySite(ctx context.Context, companyID string) (map[string]float64, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return track.HoursByJobSite(data.TimeEntries, data.JobSites), nil
}

// SiteStatuses reports proximity of a position to every site in the company.
func (s *Service) SiteStatuses(ctx context.Context, companyID string, pos domain.Position) ([]track.SiteStatus, error) {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return track.StatusForSites(pos, data.JobSites), nil
}

// ─── Administration ─────────────────────────────────────────────────────────

// CreateJobSite validates and persists a new clock-in target. A zero radius
// takes the company's default.
func (s *Service) CreateJobSite(ctx context.Context, site domain.JobSite) (*domain.JobSite, error) {
	if site.Radius == 0 {
		if company, err := s.store.GetCompany(ctx, site.CompanyID); err == nil {
			site.Radius = company.Settings.DefaultRadius
		}
	}
	if err := domain.ValidateJobSite(site); err != nil {
		return nil, err
	}

	now := s.now()
	site.ID = domain.NewID()
	site.Active = true
	site.CreatedAt = now
	site.UpdatedAt = now

	data, err := s.store.Load(ctx, site.CompanyID)
	if err != nil {
		return nil, err
	}
	sites := append(data.JobSites, site)
	if err := s.store.SaveJobSites(ctx, site.CompanyID, sites); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateJobSite replaces an existing site's mutable fields.
func (s *Service) UpdateJobSite(ctx context.Context, site domain.JobSite) (*domain.JobSite, error) {
	if err := domain.ValidateJobSite(site); err != nil {
		return nil, err
	}

	data, err := s.store.Load(ctx, site.CompanyID)
	if err != nil {
		return nil, err
	}
	for i := range data.JobSites {
		if data.JobSites[i].ID != site.ID {
			continue
		}
		site.CreatedAt = data.JobSites[i].CreatedAt
		site.CreatedBy = data.JobSites[i].CreatedBy
		site.Active = data.JobSites[i].Active
		site.UpdatedAt = s.now()
		data.JobSites[i] = site
		if err := s.store.SaveJobSites(ctx, site.CompanyID, data.JobSites); err != nil {
			return nil, err
		}
		return &site, nil
	}
	return nil, domain.ErrJobSiteNotFound
}

// DeleteJobSite removes a site. Existing time entries referencing it are
// left in place, orphaned; aggregation reports them as Unknown Site.
func (s *Service) DeleteJobSite(ctx context.Context, companyID, siteID string) error {
	data, err := s.store.Load(ctx, companyID)
	if err != nil {
		return err
	}

	kept := data.JobSites[:0]
	found := false
	for _, site := range data.JobSites {
		if site.ID == siteID {
			found = true
			continue
		}
		kept = append(kept, site)
	}
	if !found {
		return domain.ErrJobSiteNotFound
	}
	return s.store.SaveJobSites(ctx, companyID, kept)
}

// CreateUser validates and persists a new user in the company.
func (s *Service) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}

	now := s.now()
	user.ID = domain.NewID()
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	data, err := s.store.Load(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	users := append(data.Users, user)
	if err := s.store.SaveUsers(ctx, user.CompanyID, users); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateCompany validates and persists a new company aggregate.
func (s *Service) CreateCompany(ctx context.Context, company domain.Company) (*domain.Company, error) {
	if err := domain.ValidateCompany(company); err != nil {
		return nil, err
	}

	now := s.now()
	company.ID = domain.NewID()
	company.Active = true
	if company.Settings == (domain.CompanySettings{}) {
		company.Settings = domain.DefaultCompanySettings()
	}
	company.CreatedAt = now
	company.UpdatedAt = now

	if err := s.store.PutCompany(ctx, company); err != nil {
		return nil, err
	}
	return &company, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func userInCompany(users []domain.User, userID string) bool {
	for _, u := range users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func siteName(sites []domain.JobSite, siteID string) string {
	for _, s := range sites {
		if s.ID == siteID {
			return s.Name
		}
	}
	return track.UnknownSiteLabel
}

func rejectionCause(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		return metrics.CauseOutOfRange
	case errors.Is(err, domain.ErrAlreadyClockedIn):
		return metrics.CauseAlreadyClockedIn
	case errors.Is(err, domain.ErrJobSiteNotFound):
		return metrics.CauseSiteNotFound
	default:
		return "other"
	}
}

func locationErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		return "capability_unavailable"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrPositionUnavailable):
		return "position_unavailable"
	case errors.Is(err, domain.ErrLocationTimeout):
		return "timeout"
	default:
		return "other"
	}
}
