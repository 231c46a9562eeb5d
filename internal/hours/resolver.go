// Package hours resolves a worker's effective working hours on one civil
// date by layering independently edited schedule sources: approved leave,
// worker date overrides, ad-hoc date assignments and the recurring weekly
// schedule, with a location-wide override applied as a final clamp.
package hours

import (
	"time"

	"staffbook/internal/interval"
	"staffbook/internal/model"
)

// Request carries one resolution question plus the data snapshot loaded by
// the caller. The resolver performs no I/O.
type Request struct {
	WorkerID   int64
	LocationID int64
	Date       time.Time
	Snapshot   Snapshot
}

// Snapshot is the consistent read of every schedule source relevant to one
// (worker, location, date) question.
type Snapshot struct {
	Leaves           []model.LeaveRequest // the worker's leave requests
	WorkerOverride   *model.DateOverride  // override for (worker, location, date)
	LocationOverride *model.DateOverride  // override for (location, date)
	Assignment       *model.DateAssignment
	Weekly           *model.WeeklyWorkingHours
}

// Rule is one precedence layer. Apply returns the effective open spans and
// true when the rule has an opinion for the request; false passes the
// question down the chain.
type Rule interface {
	Name() string
	Apply(req Request) ([]interval.Span, bool)
}

// Resolver runs an ordered rule chain; the first rule with an opinion wins.
// The location-wide override is then applied as an intersection clamp on the
// winning result.
type Resolver struct {
	rules []Rule
}

// NewResolver builds a resolver with the given rule chain, or the default
// precedence order when no rules are supplied.
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules}
}

// DefaultRules returns the precedence chain: approved leave, worker date
// override, ad-hoc date assignment, weekly recurring schedule.
func DefaultRules() []Rule {
	return []Rule{
		ApprovedLeaveRule{},
		WorkerOverrideRule{},
		DateAssignmentRule{},
		WeeklyScheduleRule{},
	}
}

// Resolve returns the ordered, non-overlapping open spans for the request.
// Missing data resolves to no availability, never to an error.
func (r *Resolver) Resolve(req Request) []interval.Span {
	var open []interval.Span
	for _, rule := range r.rules {
		if result, ok := rule.Apply(req); ok {
			open = result
			break
		}
	}
	return clampToLocation(open, req.Snapshot.LocationOverride)
}

// clampToLocation intersects the worker-level result with the location's own
// open hours for the date. A closed location empties the result regardless of
// the worker's schedule.
func clampToLocation(open []interval.Span, override *model.DateOverride) []interval.Span {
	if override == nil {
		return open
	}
	switch override.Type {
	case model.OverrideClosed, model.OverrideUnavailable:
		return nil
	case model.OverrideCustomHours:
		return interval.IntersectAll(open, interval.FromSlots(override.Slots))
	}
	return open
}

// ApprovedLeaveRule empties the day when an approved leave covers the date.
// Pending and rejected requests are ignored.
type ApprovedLeaveRule struct{}

func (ApprovedLeaveRule) Name() string { return "approved_leave" }

func (ApprovedLeaveRule) Apply(req Request) ([]interval.Span, bool) {
	for i := range req.Snapshot.Leaves {
		leave := &req.Snapshot.Leaves[i]
		if leave.WorkerID != req.WorkerID || leave.Status != model.LeaveApproved {
			continue
		}
		if leave.Covers(req.Date) {
			return nil, true
		}
	}
	return nil, false
}

// WorkerOverrideRule applies a (worker, location, date) override. An
// unavailable override empties the day; custom hours replace the weekly
// schedule outright.
type WorkerOverrideRule struct{}

func (WorkerOverrideRule) Name() string { return "worker_override" }

func (WorkerOverrideRule) Apply(req Request) ([]interval.Span, bool) {
	override := req.Snapshot.WorkerOverride
	if override == nil || !model.SameDate(override.Date, req.Date) {
		return nil, false
	}
	switch override.Type {
	case model.OverrideClosed, model.OverrideUnavailable:
		return nil, true
	case model.OverrideCustomHours:
		return interval.FromSlots(override.Slots), true
	}
	return nil, false
}

// DateAssignmentRule applies an explicit one-off assignment of the worker to
// the location on the date. The assignment's slots replace the recurring
// weekly schedule for that date.
type DateAssignmentRule struct{}

func (DateAssignmentRule) Name() string { return "date_assignment" }

func (DateAssignmentRule) Apply(req Request) ([]interval.Span, bool) {
	assignment := req.Snapshot.Assignment
	if assignment == nil || !model.SameDate(assignment.Date, req.Date) {
		return nil, false
	}
	return interval.FromSlots(assignment.Slots), true
}

// WeeklyScheduleRule is the terminal fallback: the recurring hours for the
// date's weekday. No configured schedule or a closed day means no
// availability.
type WeeklyScheduleRule struct{}

func (WeeklyScheduleRule) Name() string { return "weekly_schedule" }

func (WeeklyScheduleRule) Apply(req Request) ([]interval.Span, bool) {
	weekly := req.Snapshot.Weekly
	if weekly == nil {
		return nil, true
	}
	day, ok := weekly.Days[req.Date.Weekday()]
	if !ok || day.Closed {
		return nil, true
	}
	return interval.FromSlots(day.Slots), true
}
