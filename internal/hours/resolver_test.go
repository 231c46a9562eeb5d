package hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"staffbook/internal/interval"
	"staffbook/internal/model"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) // a Monday

func weeklyNineToFive() *model.WeeklyWorkingHours {
	return &model.WeeklyWorkingHours{
		WorkerID:   1,
		LocationID: 10,
		Days: map[time.Weekday]model.DaySchedule{
			time.Monday: {Slots: []model.TimeSlot{{Start: "09:00", End: "17:00"}}},
			time.Sunday: {Closed: true},
		},
	}
}

func request(snapshot Snapshot) Request {
	return Request{WorkerID: 1, LocationID: 10, Date: monday, Snapshot: snapshot}
}

func TestResolveWeeklyFallback(t *testing.T) {
	resolver := NewResolver()

	open := resolver.Resolve(request(Snapshot{Weekly: weeklyNineToFive()}))
	assert.Equal(t, []interval.Span{{Start: 540, End: 1020}}, open)
}

func TestResolveMissingDataIsUnavailable(t *testing.T) {
	resolver := NewResolver()

	assert.Empty(t, resolver.Resolve(request(Snapshot{})), "no configured schedule resolves to unavailable, not an error")

	closedDay := request(Snapshot{Weekly: weeklyNineToFive()})
	closedDay.Date = monday.AddDate(0, 0, -1) // Sunday, closed
	assert.Empty(t, resolver.Resolve(closedDay))

	unknownDay := request(Snapshot{Weekly: weeklyNineToFive()})
	unknownDay.Date = monday.AddDate(0, 0, 1) // Tuesday, not configured
	assert.Empty(t, resolver.Resolve(unknownDay))
}

func TestResolveApprovedLeaveWins(t *testing.T) {
	resolver := NewResolver()

	snapshot := Snapshot{
		Weekly: weeklyNineToFive(),
		WorkerOverride: &model.DateOverride{
			LocationID: 10, Date: monday, Type: model.OverrideCustomHours,
			Slots: []model.TimeSlot{{Start: "10:00", End: "14:00"}},
		},
		Leaves: []model.LeaveRequest{
			{WorkerID: 1, StartDate: monday.AddDate(0, 0, -2), EndDate: monday.AddDate(0, 0, 2), Status: model.LeaveApproved},
		},
	}

	assert.Empty(t, resolver.Resolve(request(snapshot)), "approved leave empties the day regardless of overrides")
}

func TestResolvePendingLeaveIgnored(t *testing.T) {
	resolver := NewResolver()

	snapshot := Snapshot{
		Weekly: weeklyNineToFive(),
		Leaves: []model.LeaveRequest{
			{WorkerID: 1, StartDate: monday, EndDate: monday, Status: model.LeavePending},
			{WorkerID: 2, StartDate: monday, EndDate: monday, Status: model.LeaveApproved}, // other worker
		},
	}

	assert.Equal(t, []interval.Span{{Start: 540, End: 1020}}, resolver.Resolve(request(snapshot)))
}

func TestResolveWorkerOverride(t *testing.T) {
	resolver := NewResolver()

	t.Run("unavailable empties the day", func(t *testing.T) {
		snapshot := Snapshot{
			Weekly: weeklyNineToFive(),
			WorkerOverride: &model.DateOverride{
				LocationID: 10, Date: monday, Type: model.OverrideUnavailable,
			},
		}
		assert.Empty(t, resolver.Resolve(request(snapshot)))
	})

	t.Run("custom hours replace the weekly schedule", func(t *testing.T) {
		snapshot := Snapshot{
			Weekly: weeklyNineToFive(),
			WorkerOverride: &model.DateOverride{
				LocationID: 10, Date: monday, Type: model.OverrideCustomHours,
				Slots: []model.TimeSlot{{Start: "12:00", End: "15:00"}},
			},
		}
		assert.Equal(t, []interval.Span{{Start: 720, End: 900}}, resolver.Resolve(request(snapshot)))
	})

	t.Run("override for another date is ignored", func(t *testing.T) {
		snapshot := Snapshot{
			Weekly: weeklyNineToFive(),
			WorkerOverride: &model.DateOverride{
				LocationID: 10, Date: monday.AddDate(0, 0, 7), Type: model.OverrideUnavailable,
			},
		}
		assert.Equal(t, []interval.Span{{Start: 540, End: 1020}}, resolver.Resolve(request(snapshot)))
	})
}

func TestResolveDateAssignmentReplacesWeekly(t *testing.T) {
	resolver := NewResolver()

	snapshot := Snapshot{
		Weekly: weeklyNineToFive(),
		Assignment: &model.DateAssignment{
			WorkerID: 1, LocationID: 10, Date: monday,
			Slots: []model.TimeSlot{{Start: "08:00", End: "11:00"}, {Start: "13:00", End: "16:00"}},
		},
	}

	open := resolver.Resolve(request(snapshot))
	assert.Equal(t, []interval.Span{{Start: 480, End: 660}, {Start: 780, End: 960}}, open)
}

func TestResolveLocationClamp(t *testing.T) {
	resolver := NewResolver()

	t.Run("closed location empties any worker schedule", func(t *testing.T) {
		snapshot := Snapshot{
			Weekly: weeklyNineToFive(),
			LocationOverride: &model.DateOverride{
				LocationID: 10, Date: monday, Type: model.OverrideClosed,
			},
		}
		assert.Empty(t, resolver.Resolve(request(snapshot)))
	})

	t.Run("custom location hours intersect the worker result", func(t *testing.T) {
		snapshot := Snapshot{
			Weekly: weeklyNineToFive(),
			LocationOverride: &model.DateOverride{
				LocationID: 10, Date: monday, Type: model.OverrideCustomHours,
				Slots: []model.TimeSlot{{Start: "11:00", End: "20:00"}},
			},
		}
		assert.Equal(t, []interval.Span{{Start: 660, End: 1020}}, resolver.Resolve(request(snapshot)))
	})
}

func TestResolveIdempotent(t *testing.T) {
	resolver := NewResolver()
	snapshot := Snapshot{
		Weekly: weeklyNineToFive(),
		LocationOverride: &model.DateOverride{
			LocationID: 10, Date: monday, Type: model.OverrideCustomHours,
			Slots: []model.TimeSlot{{Start: "08:00", End: "12:00"}},
		},
	}

	first := resolver.Resolve(request(snapshot))
	second := resolver.Resolve(request(snapshot))
	assert.Equal(t, first, second, "identical inputs must yield identical, order-stable output")
}

// Each precedence rule can be exercised in isolation.
func TestRuleOpinions(t *testing.T) {
	req := request(Snapshot{Weekly: weeklyNineToFive()})

	_, ok := (ApprovedLeaveRule{}).Apply(req)
	assert.False(t, ok, "no leave, no opinion")

	_, ok = (WorkerOverrideRule{}).Apply(req)
	assert.False(t, ok, "no override, no opinion")

	_, ok = (DateAssignmentRule{}).Apply(req)
	assert.False(t, ok, "no assignment, no opinion")

	open, ok := (WeeklyScheduleRule{}).Apply(req)
	assert.True(t, ok, "weekly rule is terminal")
	assert.Len(t, open, 1)
}
