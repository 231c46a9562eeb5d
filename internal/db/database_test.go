package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffbook/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func seedWorkerAndLocation(t *testing.T, database *DB) (workerID, locationID int64) {
	t.Helper()
	ctx := context.Background()
	workerID, err := database.CreateWorker(ctx, "Dana")
	require.NoError(t, err)
	locationID, err = database.CreateLocation(ctx, "North Clinic")
	require.NoError(t, err)
	return workerID, locationID
}

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestWeeklyHoursRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	workerID, locationID := seedWorkerAndLocation(t, database)

	slots := []model.TimeSlot{
		{Start: "09:00", End: "13:00"},
		{Start: "14:00", End: "18:00"},
	}
	require.NoError(t, database.SetWeeklyHours(ctx, workerID, locationID, time.Monday, slots))

	weekly, err := database.GetWeeklyHours(ctx, workerID, locationID)
	require.NoError(t, err)
	assert.Equal(t, slots, weekly.Days[time.Monday].Slots)

	// Unset weekdays are absent, which counts as closed.
	_, ok := weekly.Days[time.Tuesday]
	assert.False(t, ok)

	// Replacing a day's hours removes the old rows.
	require.NoError(t, database.SetWeeklyHours(ctx, workerID, locationID, time.Monday,
		[]model.TimeSlot{{Start: "10:00", End: "16:00"}}))
	weekly, err = database.GetWeeklyHours(ctx, workerID, locationID)
	require.NoError(t, err)
	assert.Len(t, weekly.Days[time.Monday].Slots, 1)
}

func TestOverrideUpsertByKey(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	workerID, locationID := seedWorkerAndLocation(t, database)

	override := &model.DateOverride{
		WorkerID:   &workerID,
		LocationID: locationID,
		Date:       testDate,
		Type:       model.OverrideUnavailable,
	}
	require.NoError(t, database.UpsertOverride(ctx, override))

	// Same scope and date: the second write replaces, not duplicates.
	override.Type = model.OverrideCustomHours
	override.Slots = []model.TimeSlot{{Start: "12:00", End: "15:00"}}
	require.NoError(t, database.UpsertOverride(ctx, override))

	got, err := database.GetWorkerOverride(ctx, workerID, locationID, testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.OverrideCustomHours, got.Type)
	assert.Equal(t, override.Slots, got.Slots)

	// Worker and location scopes are independent keys for the same date.
	require.NoError(t, database.UpsertOverride(ctx, &model.DateOverride{
		LocationID: locationID,
		Date:       testDate,
		Type:       model.OverrideClosed,
	}))
	locationOverride, err := database.GetLocationOverride(ctx, locationID, testDate)
	require.NoError(t, err)
	require.NotNil(t, locationOverride)
	assert.Equal(t, model.OverrideClosed, locationOverride.Type)

	workerOverride, err := database.GetWorkerOverride(ctx, workerID, locationID, testDate)
	require.NoError(t, err)
	assert.Equal(t, model.OverrideCustomHours, workerOverride.Type)

	// Missing override is nil, not an error.
	none, err := database.GetWorkerOverride(ctx, workerID, locationID, testDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestLeaveRequests(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	workerID, _ := seedWorkerAndLocation(t, database)

	leave := &model.LeaveRequest{
		WorkerID:  workerID,
		StartDate: testDate,
		EndDate:   testDate.AddDate(0, 0, 4),
		Status:    model.LeaveApproved,
		Reason:    "vacation",
	}
	require.NoError(t, database.CreateLeaveRequest(ctx, leave))
	assert.NotEmpty(t, leave.ID, "missing ID gets a generated uuid")

	pending := &model.LeaveRequest{WorkerID: workerID, StartDate: testDate, EndDate: testDate}
	require.NoError(t, database.CreateLeaveRequest(ctx, pending))
	assert.Equal(t, model.LeavePending, pending.Status)

	approved, err := database.ListWorkerLeave(ctx, workerID, model.LeaveApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.True(t, approved[0].Covers(testDate.AddDate(0, 0, 2)))

	all, err := database.ListWorkerLeave(ctx, workerID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, database.UpdateLeaveStatus(ctx, pending.ID, model.LeaveRejected))
	rejected, err := database.ListWorkerLeave(ctx, workerID, model.LeaveRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)

	assert.Error(t, database.UpdateLeaveStatus(ctx, "missing-id", model.LeaveApproved))
}

func TestDateAssignments(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	workerID, locationID := seedWorkerAndLocation(t, database)
	otherLocation, err := database.CreateLocation(ctx, "South Clinic")
	require.NoError(t, err)

	assignment := &model.DateAssignment{
		WorkerID:   workerID,
		LocationID: locationID,
		Date:       testDate,
		Slots:      []model.TimeSlot{{Start: "09:00", End: "12:00"}},
	}
	require.NoError(t, database.UpsertDateAssignment(ctx, assignment))

	got, err := database.GetDateAssignment(ctx, workerID, locationID, testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, assignment.Slots, got.Slots)
	assert.Equal(t, testDate, got.Date)

	// Worker also has weekly hours at the other location on this weekday.
	require.NoError(t, database.SetWeeklyHours(ctx, workerID, otherLocation, testDate.Weekday(),
		[]model.TimeSlot{{Start: "13:00", End: "17:00"}}))

	ids, err := database.ListWorkerLocationIDs(ctx, workerID, testDate, locationID)
	require.NoError(t, err)
	assert.Equal(t, []int64{otherLocation}, ids)

	ids, err = database.ListWorkerLocationIDs(ctx, workerID, testDate, otherLocation)
	require.NoError(t, err)
	assert.Equal(t, []int64{locationID}, ids)

	require.NoError(t, database.DeleteDateAssignment(ctx, workerID, locationID, testDate))
	gone, err := database.GetDateAssignment(ctx, workerID, locationID, testDate)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAppointments(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	workerID, locationID := seedWorkerAndLocation(t, database)

	id, err := database.CreateAppointment(ctx, &model.Appointment{
		WorkerID:   workerID,
		LocationID: locationID,
		Date:       testDate,
		Start:      "10:00",
		End:        "10:30",
		Status:     model.AppointmentConfirmed,
		ClientName: "Sam",
	})
	require.NoError(t, err)

	_, err = database.CreateAppointment(ctx, &model.Appointment{
		WorkerID:   workerID,
		LocationID: locationID,
		Date:       testDate,
		Start:      "11:00",
		End:        "11:30",
	})
	require.NoError(t, err)

	appointments, err := database.ListWorkerAppointments(ctx, workerID, testDate)
	require.NoError(t, err)
	assert.Len(t, appointments, 2)
	assert.Equal(t, "10:00", appointments[0].Start)

	// Cancelled appointments stop occupying time.
	require.NoError(t, database.CancelAppointment(ctx, id))
	appointments, err = database.ListWorkerAppointments(ctx, workerID, testDate)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "11:00", appointments[0].Start)
}

func TestRevisionsBumpOnWrites(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	workerID, locationID := seedWorkerAndLocation(t, database)

	rev, err := database.Revision(ctx, WorkerScope(workerID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rev)

	require.NoError(t, database.SetWeeklyHours(ctx, workerID, locationID, time.Monday,
		[]model.TimeSlot{{Start: "09:00", End: "17:00"}}))

	workerRev, err := database.Revision(ctx, WorkerScope(workerID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), workerRev)

	locationRev, err := database.Revision(ctx, LocationScope(locationID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), locationRev)

	require.NoError(t, database.UpsertOverride(ctx, &model.DateOverride{
		LocationID: locationID,
		Date:       testDate,
		Type:       model.OverrideClosed,
	}))
	locationRev, err = database.Revision(ctx, LocationScope(locationID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), locationRev)

	// Location-scoped overrides leave worker revisions untouched.
	workerRev, err = database.Revision(ctx, WorkerScope(workerID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), workerRev)
}
