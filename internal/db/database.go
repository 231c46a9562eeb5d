// Package db is the sqlite-backed storage collaborator. It supplies the raw
// schedule, override, leave, assignment and appointment records the
// availability engine consumes; the engine itself never touches storage.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"staffbook/internal/model"
)

// DB wraps sql.DB for the staff booking service.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS workers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Weekly recurring hours; several rows per weekday model split
		// shifts. No rows for a weekday means closed.
		`CREATE TABLE IF NOT EXISTS weekly_hours (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			worker_id INTEGER NOT NULL REFERENCES workers(id),
			location_id INTEGER NOT NULL REFERENCES locations(id),
			day_of_week INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// worker_id 0 scopes the override to the whole location.
		`CREATE TABLE IF NOT EXISTS date_overrides (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			worker_id INTEGER NOT NULL DEFAULT 0,
			location_id INTEGER NOT NULL REFERENCES locations(id),
			date TEXT NOT NULL,
			override_type TEXT NOT NULL,
			slots TEXT,
			reason TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(worker_id, location_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS leave_requests (
			id TEXT PRIMARY KEY,
			worker_id INTEGER NOT NULL REFERENCES workers(id),
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS date_assignments (
			id TEXT PRIMARY KEY,
			worker_id INTEGER NOT NULL REFERENCES workers(id),
			location_id INTEGER NOT NULL REFERENCES locations(id),
			date TEXT NOT NULL,
			slots TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(worker_id, location_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			worker_id INTEGER NOT NULL REFERENCES workers(id),
			location_id INTEGER NOT NULL REFERENCES locations(id),
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			client_name TEXT,
			comment TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Monotonic counters per scope ("worker:7", "location:3"), bumped by
		// every schedule-affecting write. Cache keys embed them so stale
		// availability answers age out immediately.
		`CREATE TABLE IF NOT EXISTS revisions (
			scope TEXT PRIMARY KEY,
			revision INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_hours_lookup ON weekly_hours(worker_id, location_id, day_of_week)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_worker_date ON appointments(worker_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_worker_date ON date_assignments(worker_id, date)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// CreateWorker inserts a worker and returns its ID.
func (db *DB) CreateWorker(ctx context.Context, name string) (int64, error) {
	res, err := db.ExecContext(ctx, "INSERT INTO workers (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("create worker: %w", err)
	}
	return res.LastInsertId()
}

// GetWorker returns a worker by ID.
func (db *DB) GetWorker(ctx context.Context, id int64) (*model.Worker, error) {
	var w model.Worker
	err := db.QueryRowContext(ctx,
		"SELECT id, name, is_active, created_at FROM workers WHERE id = ?", id,
	).Scan(&w.ID, &w.Name, &w.IsActive, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateLocation inserts a location and returns its ID.
func (db *DB) CreateLocation(ctx context.Context, name string) (int64, error) {
	res, err := db.ExecContext(ctx, "INSERT INTO locations (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("create location: %w", err)
	}
	return res.LastInsertId()
}

// GetLocation returns a location by ID.
func (db *DB) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	var l model.Location
	err := db.QueryRowContext(ctx,
		"SELECT id, name, is_active, created_at FROM locations WHERE id = ?", id,
	).Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListActiveLocations returns every active location ordered by name.
func (db *DB) ListActiveLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, is_active, created_at FROM locations WHERE is_active = 1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// Revision returns the current counter for a scope; missing scopes are 0.
func (db *DB) Revision(ctx context.Context, scope string) (int64, error) {
	var rev int64
	err := db.QueryRowContext(ctx,
		"SELECT revision FROM revisions WHERE scope = ?", scope).Scan(&rev)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return rev, err
}

func (db *DB) bumpRevision(ctx context.Context, scopes ...string) error {
	for _, scope := range scopes {
		_, err := db.ExecContext(ctx, `
			INSERT INTO revisions (scope, revision) VALUES (?, 1)
			ON CONFLICT(scope) DO UPDATE SET revision = revision + 1`,
			scope)
		if err != nil {
			return fmt.Errorf("bump revision %s: %w", scope, err)
		}
	}
	return nil
}

// WorkerScope and LocationScope build revision scope keys.
func WorkerScope(workerID int64) string     { return fmt.Sprintf("worker:%d", workerID) }
func LocationScope(locationID int64) string { return fmt.Sprintf("location:%d", locationID) }

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, s, time.UTC)
}
