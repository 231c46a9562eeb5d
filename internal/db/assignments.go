package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"staffbook/internal/model"
)

// UpsertDateAssignment creates or replaces a worker's ad-hoc assignment for
// a location and date.
func (db *DB) UpsertDateAssignment(ctx context.Context, a *model.DateAssignment) error {
	if a == nil {
		return fmt.Errorf("assignment is nil")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	slotsJSON, err := marshalSlots(a.Slots)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = db.ExecContext(ctx, `
		INSERT INTO date_assignments (id, worker_id, location_id, date, slots, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, location_id, date) DO UPDATE SET
			slots = excluded.slots,
			updated_at = excluded.updated_at`,
		a.ID, a.WorkerID, a.LocationID, formatDate(a.Date), slotsJSON, now, now)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return db.bumpRevision(ctx, WorkerScope(a.WorkerID), LocationScope(a.LocationID))
}

// GetDateAssignment returns the assignment for (worker, location, date), or
// nil when none exists.
func (db *DB) GetDateAssignment(ctx context.Context, workerID, locationID int64, date time.Time) (*model.DateAssignment, error) {
	var a model.DateAssignment
	var dateStr, slotsJSON string
	err := db.QueryRowContext(ctx, `
		SELECT id, worker_id, location_id, date, slots, created_at, updated_at
		FROM date_assignments
		WHERE worker_id = ? AND location_id = ? AND date = ?
		LIMIT 1`,
		workerID, locationID, formatDate(date),
	).Scan(&a.ID, &a.WorkerID, &a.LocationID, &dateStr, &slotsJSON, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if a.Date, err = parseDate(dateStr); err != nil {
		return nil, fmt.Errorf("parse assignment date: %w", err)
	}
	if a.Slots, err = unmarshalSlots(slotsJSON); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteDateAssignment removes an assignment.
func (db *DB) DeleteDateAssignment(ctx context.Context, workerID, locationID int64, date time.Time) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM date_assignments WHERE worker_id = ? AND location_id = ? AND date = ?",
		workerID, locationID, formatDate(date))
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return db.bumpRevision(ctx, WorkerScope(workerID), LocationScope(locationID))
}

// ListWorkerLocationIDs returns the distinct locations where the worker has
// either an ad-hoc assignment on the date or recurring hours for its
// weekday, excluding one location (the proposal's own).
func (db *DB) ListWorkerLocationIDs(ctx context.Context, workerID int64, date time.Time, excludeLocationID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT location_id FROM (
			SELECT location_id FROM date_assignments WHERE worker_id = ? AND date = ?
			UNION
			SELECT location_id FROM weekly_hours WHERE worker_id = ? AND day_of_week = ?
		)
		WHERE location_id != ?
		ORDER BY location_id`,
		workerID, formatDate(date), workerID, int(date.Weekday()), excludeLocationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateAppointment inserts an appointment and returns its ID.
func (db *DB) CreateAppointment(ctx context.Context, a *model.Appointment) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("appointment is nil")
	}
	if a.Status == "" {
		a.Status = model.AppointmentPending
	}

	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO appointments (worker_id, location_id, date, start_time, end_time, status, client_name, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.WorkerID, a.LocationID, formatDate(a.Date), a.Start, a.End, a.Status, a.ClientName, a.Comment, now, now)
	if err != nil {
		return 0, fmt.Errorf("create appointment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = id
	return id, db.bumpRevision(ctx, WorkerScope(a.WorkerID), LocationScope(a.LocationID))
}

// CancelAppointment marks an appointment cancelled, freeing its time slot.
func (db *DB) CancelAppointment(ctx context.Context, id int64) error {
	var workerID, locationID int64
	err := db.QueryRowContext(ctx,
		"SELECT worker_id, location_id FROM appointments WHERE id = ?", id,
	).Scan(&workerID, &locationID)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}

	_, err = db.ExecContext(ctx,
		"UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?",
		model.AppointmentCancelled, time.Now(), id)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	return db.bumpRevision(ctx, WorkerScope(workerID), LocationScope(locationID))
}

// ListWorkerAppointments returns a worker's non-cancelled appointments for a
// date, ordered by start time.
func (db *DB) ListWorkerAppointments(ctx context.Context, workerID int64, date time.Time) ([]model.Appointment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, worker_id, location_id, date, start_time, end_time, status, client_name, comment, created_at, updated_at
		FROM appointments
		WHERE worker_id = ? AND date = ? AND status != ?
		ORDER BY start_time`,
		workerID, formatDate(date), model.AppointmentCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []model.Appointment
	for rows.Next() {
		var a model.Appointment
		var dateStr string
		if err := rows.Scan(&a.ID, &a.WorkerID, &a.LocationID, &dateStr, &a.Start, &a.End,
			&a.Status, &a.ClientName, &a.Comment, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if a.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse appointment date: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
