package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ─── Boundary Validation ────────────────────────────────────────────────────
// Records are validated before they enter the geo or ledger layers.
// Out-of-range values are rejected, never clamped.

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateJobSite checks a job site record for persistence. A site that
// fails here cannot become a clock-in target.
func ValidateJobSite(s JobSite) error {
	var problems []string

	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "job site name is required")
	}
	if len(s.Name) > 100 {
		problems = append(problems, "job site name must be 100 characters or less")
	}
	if s.CompanyID == "" {
		problems = append(problems, "company id is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		problems = append(problems, "latitude must be between -90 and 90 degrees")
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		problems = append(problems, "longitude must be between -180 and 180 degrees")
	}
	if s.Radius < MinRadiusMeters || s.Radius > MaxRadiusMeters {
		problems = append(problems, fmt.Sprintf("radius must be between %d and %d meters",
			MinRadiusMeters, MaxRadiusMeters))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateUser checks a user record for persistence.
func ValidateUser(u User) error {
	var problems []string

	if strings.TrimSpace(u.FirstName) == "" {
		problems = append(problems, "first name is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		problems = append(problems, "last name is required")
	}
	if strings.TrimSpace(u.Username) == "" {
		problems = append(problems, "username is required")
	} else if !usernameRe.MatchString(u.Username) {
		problems = append(problems, "username can only contain letters, numbers, underscores, and hyphens")
	}
	if u.Email == "" || !emailRe.MatchString(u.Email) {
		problems = append(problems, "valid email is required")
	}
	if !u.Role.Valid() {
		problems = append(problems, "valid role is required")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateCompany checks a company record for persistence.
func ValidateCompany(c Company) error {
	var problems []string

	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "company name is required")
	}
	if strings.TrimSpace(c.Industry) == "" {
		problems = append(problems, "industry is required")
	}
	if c.Email == "" || !emailRe.MatchString(c.Email) {
		problems = append(problems, "valid company email is required")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
