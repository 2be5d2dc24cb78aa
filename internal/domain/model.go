// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ─── Roles & Statuses ───────────────────────────────────────────────────────

// Role is a user's permission level within a company.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// CanManage reports whether the role may administer users and job sites.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleManager
}

// EntryStatus is the lifecycle state of a time entry.
type EntryStatus string

const (
	StatusClockedIn EntryStatus = "clocked_in"
	StatusCompleted EntryStatus = "completed"
	// StatusCancelled is reserved. No flow in this system produces it;
	// closing an entry is a one-way transition to completed.
	StatusCancelled EntryStatus = "cancelled"
)

// ─── Company ────────────────────────────────────────────────────────────────

// CompanySettings holds per-company operational defaults.
type CompanySettings struct {
	Timezone      string `json:"timezone"`
	DefaultRadius int    `json:"default_radius"`
	MaxDailyHours int    `json:"max_daily_hours"`
	AllowOvertime bool   `json:"allow_overtime"`
}

// DefaultCompanySettings returns the settings applied to a new company.
func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		Timezone:      "America/New_York",
		DefaultRadius: 100,
		MaxDailyHours: 12,
		AllowOvertime: true,
	}
}

// Company is the partitioning boundary: users, job sites, and time entries
// are grouped under exactly one company and isolated from all others.
type Company struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Industry  string          `json:"industry"`
	Address   string          `json:"address,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Email     string          `json:"email"`
	Settings  CompanySettings `json:"settings"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ─── User ───────────────────────────────────────────────────────────────────

// User is a person who can clock in at job sites. CompanyID is empty only
// for accounts that have not been onboarded to a company yet. Role is
// immutable after creation.
type User struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "Unknown User"
}

// ─── Job Site ───────────────────────────────────────────────────────────────

// Geofence radius bounds in meters.
const (
	MinRadiusMeters = 10
	MaxRadiusMeters = 1000
)

// JobSite is a clock-in target: a named location with a circular geofence.
// Latitude, longitude, and radius are always present and in range once a
// site is persisted (validated at the boundary, never clamped).
type JobSite struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Address1  string    `json:"address1,omitempty"`
	Address2  string    `json:"address2,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	ZipCode   string    `json:"zip_code,omitempty"`
	Country   string    `json:"country,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Radius    int       `json:"radius"` // meters
	CreatedBy string    `json:"created_by,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullAddress joins the populated postal fields with commas.
// The default country is omitted to keep domestic addresses short.
func (s JobSite) FullAddress() string {
	var parts []string
	for _, p := range []string{s.Address1, s.Address2, s.City, s.State, s.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if s.Country != "" && s.Country != "United States" {
		parts = append(parts, s.Country)
	}
	return strings.Join(parts, ", ")
}

// ─── Time Entry ─────────────────────────────────────────────────────────────

// TimeEntry records one work session. CompanyID is denormalized from the
// user at creation time. ClockInTime is set at creation and never changed;
// ClockOutTime is nil while open and set exactly once at close.
type TimeEntry struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	JobSiteID    string      `json:"job_site_id"`
	CompanyID    string      `json:"company_id"`
	ClockInTime  time.Time   `json:"clock_in_time"`
	ClockOutTime *time.Time  `json:"clock_out_time,omitempty"`
	TotalHours   float64     `json:"total_hours"`
	Status       EntryStatus `json:"status"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Open reports whether the entry is an active (not yet closed) session.
func (e TimeEntry) Open() bool {
	return e.Status == StatusClockedIn
}

// Duration returns the elapsed time of the entry, measured against now
// while the entry is still open.
func (e TimeEntry) Duration(now time.Time) time.Duration {
	if e.ClockOutTime != nil {
		return e.ClockOutTime.Sub(e.ClockInTime)
	}
	return now.Sub(e.ClockInTime)
}

// FormatDuration renders the entry's elapsed time as "2h 15m" or "45m".
func (e TimeEntry) FormatDuration(now time.Time) string {
	d := e.Duration(now)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// HoursBetween converts the wall-clock delta between two instants to hours
// rounded to 2 decimal places. The raw millisecond difference governs —
// no calendar-aware adjustment (DST transitions are not special-cased).
func HoursBetween(in, out time.Time) float64 {
	ms := out.Sub(in).Milliseconds()
	return Round2(float64(ms) / (1000 * 60 * 60))
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ─── Position ───────────────────────────────────────────────────────────────

// Position is a single device-reported GPS reading. It is ephemeral —
// produced fresh by each location query, never persisted, and held only
// as "current known location" until superseded.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // meters
	Timestamp time.Time `json:"timestamp"`
}

// ─── IDs ────────────────────────────────────────────────────────────────────

// NewID returns a fresh opaque entity id.
func NewID() string {
	return uuid.NewString()
}
