package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"staffbook/internal/model"
)

// CreateLeaveRequest inserts a leave request. An empty ID gets a generated
// uuid; the caller decides the initial status (auto-approve is a service
// level policy).
func (db *DB) CreateLeaveRequest(ctx context.Context, leave *model.LeaveRequest) error {
	if leave == nil {
		return fmt.Errorf("leave request is nil")
	}
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.Status == "" {
		leave.Status = model.LeavePending
	}

	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, worker_id, start_date, end_date, status, reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		leave.ID, leave.WorkerID, formatDate(leave.StartDate), formatDate(leave.EndDate),
		string(leave.Status), leave.Reason, now, now)
	if err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return db.bumpRevision(ctx, WorkerScope(leave.WorkerID))
}

// UpdateLeaveStatus moves a leave request to a new status.
func (db *DB) UpdateLeaveStatus(ctx context.Context, id string, status model.LeaveStatus) error {
	res, err := db.ExecContext(ctx,
		"UPDATE leave_requests SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("leave request %s not found", id)
	}

	var workerID int64
	if err := db.QueryRowContext(ctx,
		"SELECT worker_id FROM leave_requests WHERE id = ?", id).Scan(&workerID); err != nil {
		return err
	}
	return db.bumpRevision(ctx, WorkerScope(workerID))
}

// ListWorkerLeave returns a worker's leave requests, optionally filtered by
// status. Pending and approved are what the admin screens display; only
// approved affects availability.
func (db *DB) ListWorkerLeave(ctx context.Context, workerID int64, statuses ...model.LeaveStatus) ([]model.LeaveRequest, error) {
	query := `
		SELECT id, worker_id, start_date, end_date, status, reason, created_at, updated_at
		FROM leave_requests
		WHERE worker_id = ?`
	args := []interface{}{workerID}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, s := range statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		query += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY start_date"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []model.LeaveRequest
	for rows.Next() {
		var l model.LeaveRequest
		var startDate, endDate, status string
		if err := rows.Scan(&l.ID, &l.WorkerID, &startDate, &endDate, &status, &l.Reason, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Status = model.LeaveStatus(status)
		if l.StartDate, err = parseDate(startDate); err != nil {
			return nil, fmt.Errorf("parse leave start: %w", err)
		}
		if l.EndDate, err = parseDate(endDate); err != nil {
			return nil, fmt.Errorf("parse leave end: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}
