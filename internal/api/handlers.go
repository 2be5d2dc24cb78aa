package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yaro360/timetracker-saas/internal/domain"
)

// ─── Clock In / Out ─────────────────────────────────────────────────────────

// clockInRequest carries a clock-in attempt. When position is present the
// server trusts the device-reported reading; when absent the server's own
// location provider is queried.
type clockInRequest struct {
	UserID    string           `json:"user_id"`
	JobSiteID string           `json:"job_site_id"`
	Position  *domain.Position `json:"position,omitempty"`
}

// handleClockIn opens a time entry.
// POST /api/v1/companies/{companyID}/clock-in
func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req clockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.JobSiteID == "" {
		writeError(w, http.StatusBadRequest, "user_id and job_site_id are required")
		return
	}

	var entry *domain.TimeEntry
	var err error
	if req.Position != nil {
		entry, err = s.svc.ClockInAt(r.Context(), companyID, req.UserID, req.JobSiteID, *req.Position)
	} else {
		entry, err = s.svc.ClockIn(r.Context(), companyID, req.UserID, req.JobSiteID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type clockOutRequest struct {
	EntryID string `json:"entry_id"`
}

// handleClockOut closes an open time entry.
// POST /api/v1/companies/{companyID}/clock-out
func (s *Server) handleClockOut(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req clockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EntryID == "" {
		writeError(w, http.StatusBadRequest, "entry_id is required")
		return
	}

	entry, err := s.svc.ClockOut(r.Context(), companyID, req.EntryID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type siteStatusRequest struct {
	Position domain.Position `json:"position"`
}

// handleSiteStatus reports proximity of a position to every company site.
// POST /api/v1/companies/{companyID}/site-status
func (s *Server) handleSiteStatus(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req siteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	statuses, err := s.svc.SiteStatuses(r.Context(), companyID, req.Position)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sites": statuses,
	})
}

// ─── Entries & Stats ────────────────────────────────────────────────────────

// handleUserEntries lists a user's entries, oldest first.
// GET /api/v1/companies/{companyID}/users/{userID}/entries
func (s *Server) handleUserEntries(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	userID := chi.URLParam(r, "userID")

	entries, err := s.svc.EntriesForUser(r.Context(), companyID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// handleOpenEntry returns the user's active entry, or null when off the clock.
// GET /api/v1/companies/{companyID}/users/{userID}/open-entry
func (s *Server) handleOpenEntry(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	userID := chi.URLParam(r, "userID")

	entry, err := s.svc.OpenEntry(r.Context(), companyID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry": entry,
	})
}

// handleUserStats returns a user's week/month/all-time hours.
// GET /api/v1/companies/{companyID}/users/{userID}/stats
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	userID := chi.URLParam(r, "userID")

	stats, err := s.svc.UserStats(r.Context(), companyID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCompanyStats returns the company dashboard counters.
// GET /api/v1/companies/{companyID}/stats
func (s *Server) handleCompanyStats(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	stats, err := s.svc.CompanyStats(r.Context(), companyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleHoursBySite returns hours grouped by resolved site name.
// GET /api/v1/companies/{companyID}/hours-by-site
func (s *Server) handleHoursBySite(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	hours, err := s.svc.HoursBySite(r.Context(), companyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hours_by_site": hours,
	})
}

// ─── Administration ─────────────────────────────────────────────────────────

// handleCreateCompany registers a new company.
// POST /api/v1/companies
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var company domain.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.svc.CreateCompany(r.Context(), company)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleCreateUser adds a user to the company.
// POST /api/v1/companies/{companyID}/users
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user.CompanyID = chi.URLParam(r, "companyID")

	created, err := s.svc.CreateUser(r.Context(), user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleCreateJobSite registers a new clock-in target.
// POST /api/v1/companies/{companyID}/job-sites
func (s *Server) handleCreateJobSite(w http.ResponseWriter, r *http.Request) {
	var site domain.JobSite
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	site.CompanyID = chi.URLParam(r, "companyID")

	created, err := s.svc.CreateJobSite(r.Context(), site)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateJobSite replaces a site's mutable fields.
// PUT /api/v1/companies/{companyID}/job-sites/{siteID}
func (s *Server) handleUpdateJobSite(w http.ResponseWriter, r *http.Request) {
	var site domain.JobSite
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	site.CompanyID = chi.URLParam(r, "companyID")
	site.ID = chi.URLParam(r, "siteID")

	updated, err := s.svc.UpdateJobSite(r.Context(), site)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteJobSite removes a site. Entries referencing it stay behind
// and aggregate under the Unknown Site label.
// DELETE /api/v1/companies/{companyID}/job-sites/{siteID}
func (s *Server) handleDeleteJobSite(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	siteID := chi.URLParam(r, "siteID")

	if err := s.svc.DeleteJobSite(r.Context(), companyID, siteID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
	})
}
