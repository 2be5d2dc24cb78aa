// Package sqlite implements the persistence substrate: a key-collection
// store scoped by company, backed by an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yaro360/timetracker-saas/internal/domain"
)

// DB is the SQLite-backed store. It implements domain.Store.
type DB struct {
	db *sql.DB
}

// Open creates or opens the database under dir and applies migrations.
func Open(dir string) (*DB, error) {
	path := filepath.Join(dir, "timetracker.db")
	sqldb, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{db: sqldb}
	for _, stmt := range Migrations() {
		if _, err := sqldb.Exec(stmt); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

// Close releases the underlying database handle.
func (db *DB) Close() error { return db.db.Close() }

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			industry   TEXT NOT NULL DEFAULT 'other',
			address    TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			timezone   TEXT NOT NULL DEFAULT 'America/New_York',
			default_radius  INTEGER NOT NULL DEFAULT 100,
			max_daily_hours INTEGER NOT NULL DEFAULT 12,
			allow_overtime  INTEGER NOT NULL DEFAULT 1,
			active     INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			company_id TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name  TEXT NOT NULL DEFAULT '',
			username   TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			role       TEXT NOT NULL DEFAULT 'employee',
			active     INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_company ON users(company_id)`,

		`CREATE TABLE IF NOT EXISTS job_sites (
			id         TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			address1   TEXT NOT NULL DEFAULT '',
			address2   TEXT NOT NULL DEFAULT '',
			city       TEXT NOT NULL DEFAULT '',
			state      TEXT NOT NULL DEFAULT '',
			zip_code   TEXT NOT NULL DEFAULT '',
			country    TEXT NOT NULL DEFAULT '',
			latitude   REAL NOT NULL,
			longitude  REAL NOT NULL,
			radius     INTEGER NOT NULL,
			created_by TEXT NOT NULL DEFAULT '',
			active     INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sites_company ON job_sites(company_id)`,

		// Time entries deliberately carry no foreign key to job_sites:
		// deleting a site leaves its entries orphaned, and aggregation
		// degrades them to an "Unknown Site" label.
		`CREATE TABLE IF NOT EXISTS time_entries (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			job_site_id    TEXT NOT NULL,
			company_id     TEXT NOT NULL,
			clock_in_time  TEXT NOT NULL,
			clock_out_time TEXT,
			total_hours    REAL NOT NULL DEFAULT 0,
			status         TEXT NOT NULL DEFAULT 'clocked_in',
			notes          TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_company ON time_entries(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user ON time_entries(user_id, status)`,
	}
}

// ─── Time Encoding ──────────────────────────────────────────────────────────
// All persisted time fields are RFC 3339 strings in UTC.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// ─── Company Operations ─────────────────────────────────────────────────────

// PutCompany inserts or updates a company aggregate.
func (db *DB) PutCompany(ctx context.Context, c domain.Company) error {
	allowOvertime := 0
	if c.Settings.AllowOvertime {
		allowOvertime = 1
	}
	active := 0
	if c.Active {
		active = 1
	}
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, industry, address, phone, email,
			timezone, default_radius, max_daily_hours, allow_overtime,
			active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			industry   = excluded.industry,
			address    = excluded.address,
			phone      = excluded.phone,
			email      = excluded.email,
			timezone   = excluded.timezone,
			default_radius  = excluded.default_radius,
			max_daily_hours = excluded.max_daily_hours,
			allow_overtime  = excluded.allow_overtime,
			active     = excluded.active,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Industry, c.Address, c.Phone, c.Email,
		c.Settings.Timezone, c.Settings.DefaultRadius, c.Settings.MaxDailyHours,
		allowOvertime, active, encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt))
	return err
}

// GetCompany retrieves a company by id.
func (db *DB) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	var (
		c                     domain.Company
		allowOvertime, active int
		createdAt, updatedAt  string
	)
	err := db.db.QueryRowContext(ctx, `
		SELECT id, name, industry, address, phone, email,
			timezone, default_radius, max_daily_hours, allow_overtime,
			active, created_at, updated_at
		FROM companies WHERE id = ?
	`, companyID).Scan(&c.ID, &c.Name, &c.Industry, &c.Address, &c.Phone, &c.Email,
		&c.Settings.Timezone, &c.Settings.DefaultRadius, &c.Settings.MaxDailyHours,
		&allowOvertime, &active, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Settings.AllowOvertime = allowOvertime == 1
	c.Active = active == 1
	c.CreatedAt = decodeTime(createdAt)
	c.UpdatedAt = decodeTime(updatedAt)
	return &c, nil
}

// ─── Collection Load ────────────────────────────────────────────────────────

// Load returns the full collection snapshot for a company.
func (db *DB) Load(ctx context.Context, companyID string) (domain.CompanyData, error) {
	var data domain.CompanyData

	users, err := db.loadUsers(ctx, companyID)
	if err != nil {
		return data, fmt.Errorf("load users: %w", err)
	}
	sites, err := db.loadJobSites(ctx, companyID)
	if err != nil {
		return data, fmt.Errorf("load job sites: %w", err)
	}
	entries, err := db.loadTimeEntries(ctx, companyID)
	if err != nil {
		return data, fmt.Errorf("load time entries: %w", err)
	}

	data.Users = users
	data.JobSites = sites
	data.TimeEntries = entries
	return data, nil
}

func (db *DB) loadUsers(ctx context.Context, companyID string) ([]domain.User, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, company_id, first_name, last_name, username, email, role,
			active, created_at, updated_at
		FROM users WHERE company_id = ? ORDER BY rowid
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u                    domain.User
			active               int
			createdAt, updatedAt string
		)
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.FirstName, &u.LastName,
			&u.Username, &u.Email, &u.Role, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		u.Active = active == 1
		u.CreatedAt = decodeTime(createdAt)
		u.UpdatedAt = decodeTime(updatedAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (db *DB) loadJobSites(ctx context.Context, companyID string) ([]domain.JobSite, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, company_id, name, address1, address2, city, state, zip_code,
			country, latitude, longitude, radius, created_by, active,
			created_at, updated_at
		FROM job_sites WHERE company_id = ? ORDER BY rowid
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.JobSite
	for rows.Next() {
		var (
			s                    domain.JobSite
			active               int
			createdAt, updatedAt string
		)
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Address1, &s.Address2,
			&s.City, &s.State, &s.ZipCode, &s.Country, &s.Latitude, &s.Longitude,
			&s.Radius, &s.CreatedBy, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.Active = active == 1
		s.CreatedAt = decodeTime(createdAt)
		s.UpdatedAt = decodeTime(updatedAt)
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

func (db *DB) loadTimeEntries(ctx context.Context, companyID string) ([]domain.TimeEntry, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, user_id, job_site_id, company_id, clock_in_time,
			clock_out_time, total_hours, status, notes, created_at, updated_at
		FROM time_entries WHERE company_id = ? ORDER BY rowid
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		var (
			e                    domain.TimeEntry
			clockIn              string
			clockOut             sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.JobSiteID, &e.CompanyID, &clockIn,
			&clockOut, &e.TotalHours, &e.Status, &e.Notes, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.ClockInTime = decodeTime(clockIn)
		if clockOut.Valid {
			t := decodeTime(clockOut.String)
			e.ClockOutTime = &t
		}
		e.CreatedAt = decodeTime(createdAt)
		e.UpdatedAt = decodeTime(updatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ─── Collection Save ────────────────────────────────────────────────────────
// Saves replace one named collection for the company wholesale, inside a
// transaction — ledger persistence is all-or-nothing per call.

// SaveUsers replaces the company's user collection.
func (db *DB) SaveUsers(ctx context.Context, companyID string, users []domain.User) error {
	return db.replaceCollection(ctx, companyID, "users", func(tx *sql.Tx) error {
		for _, u := range users {
			active := 0
			if u.Active {
				active = 1
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO users (id, company_id, first_name, last_name,
					username, email, role, active, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, u.ID, companyID, u.FirstName, u.LastName, u.Username, u.Email,
				string(u.Role), active, encodeTime(u.CreatedAt), encodeTime(u.UpdatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveJobSites replaces the company's job-site collection.
func (db *DB) SaveJobSites(ctx context.Context, companyID string, sites []domain.JobSite) error {
	return db.replaceCollection(ctx, companyID, "job_sites", func(tx *sql.Tx) error {
		for _, s := range sites {
			active := 0
			if s.Active {
				active = 1
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO job_sites (id, company_id, name, address1, address2,
					city, state, zip_code, country, latitude, longitude, radius,
					created_by, active, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, s.ID, companyID, s.Name, s.Address1, s.Address2, s.City, s.State,
				s.ZipCode, s.Country, s.Latitude, s.Longitude, s.Radius,
				s.CreatedBy, active, encodeTime(s.CreatedAt), encodeTime(s.UpdatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveTimeEntries replaces the company's time-entry collection.
func (db *DB) SaveTimeEntries(ctx context.Context, companyID string, entries []domain.TimeEntry) error {
	return db.replaceCollection(ctx, companyID, "time_entries", func(tx *sql.Tx) error {
		for _, e := range entries {
			var clockOut any
			if e.ClockOutTime != nil {
				clockOut = encodeTime(*e.ClockOutTime)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO time_entries (id, user_id, job_site_id, company_id,
					clock_in_time, clock_out_time, total_hours, status, notes,
					created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, e.ID, e.UserID, e.JobSiteID, companyID, encodeTime(e.ClockInTime),
				clockOut, e.TotalHours, string(e.Status), e.Notes,
				encodeTime(e.CreatedAt), encodeTime(e.UpdatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceCollection deletes the company's rows from table and re-inserts
// via insert, atomically.
func (db *DB) replaceCollection(ctx context.Context, companyID, table string, insert func(*sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE company_id = ?`, companyID); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}
