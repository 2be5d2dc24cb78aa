// Package api provides the HTTP server for the timetracker service.
// It exposes the clock-in/clock-out flow, stats, and administration
// endpoints under /api/v1.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yaro360/timetracker-saas/internal/app/timesheet"
	"github.com/yaro360/timetracker-saas/internal/domain"
)

// Server is the timetracker HTTP API server.
type Server struct {
	svc            *timesheet.Service
	log            *zap.Logger
	metricsEnabled bool
	requestTimeout time.Duration
}

// NewServer creates a new API server.
func NewServer(svc *timesheet.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log, requestTimeout: 60 * time.Second}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetRequestTimeout overrides the per-request timeout.
func (s *Server) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		s.requestTimeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/companies", s.handleCreateCompany)

		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Get("/stats", s.handleCompanyStats)
			r.Get("/hours-by-site", s.handleHoursBySite)

			r.Post("/clock-in", s.handleClockIn)
			r.Post("/clock-out", s.handleClockOut)
			r.Post("/site-status", s.handleSiteStatus)

			r.Post("/users", s.handleCreateUser)
			r.Get("/users/{userID}/entries", s.handleUserEntries)
			r.Get("/users/{userID}/stats", s.handleUserStats)
			r.Get("/users/{userID}/open-entry", s.handleOpenEntry)

			r.Post("/job-sites", s.handleCreateJobSite)
			r.Put("/job-sites/{siteID}", s.handleUpdateJobSite)
			r.Delete("/job-sites/{siteID}", s.handleDeleteJobSite)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps domain sentinels to HTTP status codes. Out-of-range
// rejections carry the measured distance so the client can show it.
func writeDomainError(w http.ResponseWriter, err error) {
	var oor *domain.OutOfRangeError
	if errors.As(err, &oor) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": map[string]interface{}{
				"message":         oor.Error(),
				"type":            "out_of_range",
				"distance_meters": oor.Distance,
				"radius_meters":   oor.Radius,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrJobSiteNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyClockedIn),
		errors.Is(err, domain.ErrNotClockedIn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrCapabilityUnavailable),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrPositionUnavailable),
		errors.Is(err, domain.ErrLocationTimeout):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for the browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
