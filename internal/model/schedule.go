package model

import "time"

// DateLayout is the civil date format used across the engine.
const DateLayout = "2006-01-02"

// TimeSlot is a half-open time range [Start, End) within one civil date.
// Times are zero-padded 24h "HH:MM" wall-clock values; the engine converts
// them to minutes-since-midnight internally.
type TimeSlot struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "17:00"
}

// DaySchedule describes one weekday: either closed or an ordered list of
// non-overlapping slots. Slots need not be contiguous (a lunch break is two
// slots).
type DaySchedule struct {
	Closed bool       `json:"closed"`
	Slots  []TimeSlot `json:"slots,omitempty"`
}

// WeeklyWorkingHours holds the recurring schedule for one (worker, location)
// pair. Missing weekdays count as closed.
type WeeklyWorkingHours struct {
	WorkerID   int64                        `json:"worker_id"`
	LocationID int64                        `json:"location_id"`
	Days       map[time.Weekday]DaySchedule `json:"days"`
}

// OverrideType enumerates the kinds of date overrides.
type OverrideType string

const (
	OverrideClosed      OverrideType = "closed"
	OverrideUnavailable OverrideType = "unavailable"
	OverrideCustomHours OverrideType = "custom_hours"
)

// DateOverride replaces the regular schedule on one specific date. WorkerID
// nil means the override is scoped to the whole location. Only one override
// may exist per scope and date (upsert by key).
type DateOverride struct {
	ID         int64        `json:"id"`
	WorkerID   *int64       `json:"worker_id,omitempty"`
	LocationID int64        `json:"location_id"`
	Date       time.Time    `json:"date"`
	Type       OverrideType `json:"type"`
	Slots      []TimeSlot   `json:"slots,omitempty"` // custom_hours only
	Reason     string       `json:"reason,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// LeaveStatus enumerates leave request states.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is a worker's absence over an inclusive date range. Only
// approved leave affects availability.
type LeaveRequest struct {
	ID        string      `json:"id"`
	WorkerID  int64       `json:"worker_id"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Status    LeaveStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Covers reports whether the leave spans the given date.
func (l *LeaveRequest) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(l.StartDate)) && !d.After(DateOnly(l.EndDate))
}

// DateAssignment is an explicit one-off assignment of a worker to a location
// on a specific date with its own slots. For that date it replaces the
// recurring weekly schedule at the same location.
type DateAssignment struct {
	ID         string     `json:"id"`
	WorkerID   int64      `json:"worker_id"`
	LocationID int64      `json:"location_id"`
	Date       time.Time  `json:"date"`
	Slots      []TimeSlot `json:"slots"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DateOnly strips the time component, keeping the civil date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two timestamps fall on the same civil date.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
