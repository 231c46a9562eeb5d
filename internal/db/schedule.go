package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"staffbook/internal/model"
)

// SetWeeklyHours replaces the recurring hours for one weekday of a
// (worker, location) pair. An empty slot list marks the day closed.
func (db *DB) SetWeeklyHours(ctx context.Context, workerID, locationID int64, weekday time.Weekday, slots []model.TimeSlot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM weekly_hours WHERE worker_id = ? AND location_id = ? AND day_of_week = ?",
		workerID, locationID, int(weekday))
	if err != nil {
		return fmt.Errorf("clear weekly hours: %w", err)
	}

	for _, slot := range slots {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO weekly_hours (worker_id, location_id, day_of_week, start_time, end_time)
			VALUES (?, ?, ?, ?, ?)`,
			workerID, locationID, int(weekday), slot.Start, slot.End)
		if err != nil {
			return fmt.Errorf("insert weekly hours: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit weekly hours: %w", err)
	}
	return db.bumpRevision(ctx, WorkerScope(workerID), LocationScope(locationID))
}

// GetWeeklyHours returns the full recurring schedule for a (worker, location)
// pair. Weekdays with no rows are absent from the map and count as closed.
func (db *DB) GetWeeklyHours(ctx context.Context, workerID, locationID int64) (*model.WeeklyWorkingHours, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT day_of_week, start_time, end_time
		FROM weekly_hours
		WHERE worker_id = ? AND location_id = ?
		ORDER BY day_of_week, start_time`,
		workerID, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weekly := &model.WeeklyWorkingHours{
		WorkerID:   workerID,
		LocationID: locationID,
		Days:       make(map[time.Weekday]model.DaySchedule),
	}
	for rows.Next() {
		var day int
		var slot model.TimeSlot
		if err := rows.Scan(&day, &slot.Start, &slot.End); err != nil {
			return nil, err
		}
		weekday := time.Weekday(day)
		sched := weekly.Days[weekday]
		sched.Slots = append(sched.Slots, slot)
		weekly.Days[weekday] = sched
	}
	return weekly, rows.Err()
}

// UpsertOverride creates or replaces the override for its scope and date.
// Only one override may exist per (scope, date).
func (db *DB) UpsertOverride(ctx context.Context, o *model.DateOverride) error {
	if o == nil {
		return fmt.Errorf("override is nil")
	}

	slotsJSON, err := marshalSlots(o.Slots)
	if err != nil {
		return err
	}

	var workerID int64
	if o.WorkerID != nil {
		workerID = *o.WorkerID
	}

	now := time.Now()
	_, err = db.ExecContext(ctx, `
		INSERT INTO date_overrides (worker_id, location_id, date, override_type, slots, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, location_id, date) DO UPDATE SET
			override_type = excluded.override_type,
			slots = excluded.slots,
			reason = excluded.reason,
			updated_at = excluded.updated_at`,
		workerID, o.LocationID, formatDate(o.Date), string(o.Type), slotsJSON, o.Reason, now, now)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}

	scopes := []string{LocationScope(o.LocationID)}
	if o.WorkerID != nil {
		scopes = append(scopes, WorkerScope(*o.WorkerID))
	}
	return db.bumpRevision(ctx, scopes...)
}

// GetWorkerOverride returns the (worker, location, date) override, or nil
// when none exists.
func (db *DB) GetWorkerOverride(ctx context.Context, workerID, locationID int64, date time.Time) (*model.DateOverride, error) {
	return db.getOverride(ctx, workerID, locationID, date)
}

// GetLocationOverride returns the location-wide override for the date, or
// nil when none exists.
func (db *DB) GetLocationOverride(ctx context.Context, locationID int64, date time.Time) (*model.DateOverride, error) {
	return db.getOverride(ctx, 0, locationID, date)
}

func (db *DB) getOverride(ctx context.Context, workerID, locationID int64, date time.Time) (*model.DateOverride, error) {
	var o model.DateOverride
	var dateStr, overrideType string
	var slotsJSON, reason sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, location_id, date, override_type, slots, reason, created_at, updated_at
		FROM date_overrides
		WHERE worker_id = ? AND location_id = ? AND date = ?
		LIMIT 1`,
		workerID, locationID, formatDate(date),
	).Scan(&o.ID, &o.LocationID, &dateStr, &overrideType, &slotsJSON, &reason, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if workerID != 0 {
		o.WorkerID = &workerID
	}
	o.Type = model.OverrideType(overrideType)
	if o.Date, err = parseDate(dateStr); err != nil {
		return nil, fmt.Errorf("parse override date: %w", err)
	}
	if slotsJSON.Valid {
		if o.Slots, err = unmarshalSlots(slotsJSON.String); err != nil {
			return nil, err
		}
	}
	if reason.Valid {
		o.Reason = reason.String
	}
	return &o, nil
}

// DeleteOverride removes the override for a scope and date.
func (db *DB) DeleteOverride(ctx context.Context, workerID, locationID int64, date time.Time) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM date_overrides WHERE worker_id = ? AND location_id = ? AND date = ?",
		workerID, locationID, formatDate(date))
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	scopes := []string{LocationScope(locationID)}
	if workerID != 0 {
		scopes = append(scopes, WorkerScope(workerID))
	}
	return db.bumpRevision(ctx, scopes...)
}

func marshalSlots(slots []model.TimeSlot) (string, error) {
	if len(slots) == 0 {
		return "", nil
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return "", fmt.Errorf("marshal slots: %w", err)
	}
	return string(data), nil
}

func unmarshalSlots(data string) ([]model.TimeSlot, error) {
	if data == "" {
		return nil, nil
	}
	var slots []model.TimeSlot
	if err := json.Unmarshal([]byte(data), &slots); err != nil {
		return nil, fmt.Errorf("unmarshal slots: %w", err)
	}
	return slots, nil
}
