// Package availability is the orchestration layer around the pure engine:
// it loads a consistent snapshot from storage, resolves effective hours,
// generates bookable slots or detects assignment conflicts, and caches
// answers keyed by data revision.
package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"staffbook/internal/conflict"
	"staffbook/internal/events"
	"staffbook/internal/hours"
	"staffbook/internal/interval"
	"staffbook/internal/metrics"
	"staffbook/internal/model"
	"staffbook/internal/slots"
)

// Storage supplies the raw records the engine consumes.
type Storage interface {
	GetWorker(ctx context.Context, id int64) (*model.Worker, error)
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	GetWeeklyHours(ctx context.Context, workerID, locationID int64) (*model.WeeklyWorkingHours, error)
	GetWorkerOverride(ctx context.Context, workerID, locationID int64, date time.Time) (*model.DateOverride, error)
	GetLocationOverride(ctx context.Context, locationID int64, date time.Time) (*model.DateOverride, error)
	GetDateAssignment(ctx context.Context, workerID, locationID int64, date time.Time) (*model.DateAssignment, error)
	ListWorkerLeave(ctx context.Context, workerID int64, statuses ...model.LeaveStatus) ([]model.LeaveRequest, error)
	ListWorkerAppointments(ctx context.Context, workerID int64, date time.Time) ([]model.Appointment, error)
	ListWorkerLocationIDs(ctx context.Context, workerID int64, date time.Time, excludeLocationID int64) ([]int64, error)
	CreateLeaveRequest(ctx context.Context, leave *model.LeaveRequest) error
	Revision(ctx context.Context, scope string) (int64, error)
}

// Options configures service behavior.
type Options struct {
	StepMinutes      int
	LeaveAutoApprove bool
	CacheTTL         time.Duration
}

// Service answers availability and conflict questions. It holds no mutable
// state of its own; concurrent calls are safe.
type Service struct {
	storage  Storage
	resolver *hours.Resolver
	cache    *redis.Client // nil disables caching
	bus      *events.Bus
	logger   *zerolog.Logger
	opts     Options
}

// NewService wires the service. cache and bus may be nil.
func NewService(storage Storage, cache *redis.Client, bus *events.Bus, logger *zerolog.Logger, opts Options) *Service {
	if opts.StepMinutes <= 0 {
		opts.StepMinutes = slots.DefaultStepMinutes
	}
	return &Service{
		storage:  storage,
		resolver: hours.NewResolver(),
		cache:    cache,
		bus:      bus,
		logger:   logger,
		opts:     opts,
	}
}

// BookableStarts returns the ordered "HH:MM" start times at which a service
// of durationMin minutes can be booked with the worker at the location on
// the date. An empty list means no availability.
func (s *Service) BookableStarts(ctx context.Context, workerID, locationID int64, date time.Time, durationMin int) ([]string, error) {
	key, err := s.cacheKey(ctx, workerID, locationID, date, durationMin)
	if err != nil {
		return nil, err
	}

	if starts, ok := s.cacheGet(ctx, key); ok {
		metrics.IncAvailabilityQuery("hit")
		return starts, nil
	}

	snapshot, err := s.loadSnapshot(ctx, workerID, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	open := s.resolver.Resolve(hours.Request{
		WorkerID:   workerID,
		LocationID: locationID,
		Date:       date,
		Snapshot:   snapshot,
	})

	appointments, err := s.storage.ListWorkerAppointments(ctx, workerID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	starts := slots.Starts(open, slots.BusyFromAppointments(appointments), durationMin, s.opts.StepMinutes)
	s.cacheSet(ctx, key, starts)
	if s.cache != nil {
		metrics.IncAvailabilityQuery("miss")
	} else {
		metrics.IncAvailabilityQuery("off")
	}
	return starts, nil
}

// CheckAssignmentConflicts compares a proposed slot set for the worker at
// one home location against the worker's effective hours at every other
// location on the same date. It reports conflicts and a display message but
// never blocks the save; that decision stays with the caller.
func (s *Service) CheckAssignmentConflicts(ctx context.Context, workerID, locationID int64, date time.Time, proposed []model.TimeSlot) ([]model.Conflict, string, error) {
	worker, err := s.storage.GetWorker(ctx, workerID)
	if err != nil {
		return nil, "", fmt.Errorf("get worker: %w", err)
	}

	otherIDs, err := s.storage.ListWorkerLocationIDs(ctx, workerID, date, locationID)
	if err != nil {
		return nil, "", fmt.Errorf("list worker locations: %w", err)
	}

	var others []conflict.LocationSlots
	for _, otherID := range otherIDs {
		snapshot, err := s.loadSnapshot(ctx, workerID, otherID, date)
		if err != nil {
			return nil, "", fmt.Errorf("load snapshot for location %d: %w", otherID, err)
		}
		open := s.resolver.Resolve(hours.Request{
			WorkerID:   workerID,
			LocationID: otherID,
			Date:       date,
			Snapshot:   snapshot,
		})
		if len(open) == 0 {
			continue
		}

		location, err := s.storage.GetLocation(ctx, otherID)
		if err != nil {
			return nil, "", fmt.Errorf("get location %d: %w", otherID, err)
		}
		others = append(others, conflict.LocationSlots{
			LocationID:   location.ID,
			LocationName: location.Name,
			Slots:        interval.ToSlots(open),
		})
	}

	conflicts := conflict.Detect(workerID, worker.Name, date, proposed, others)
	message := conflict.FormatMessage(conflicts)

	if len(conflicts) > 0 {
		metrics.IncConflictsDetected()
		if s.bus != nil {
			s.bus.Publish(events.Event{
				Type:       events.TypeAssignmentConflict,
				WorkerID:   workerID,
				LocationID: locationID,
				Date:       model.DateOnly(date),
				Detail:     message,
			})
		}
		s.logger.Info().
			Int64("worker_id", workerID).
			Int64("location_id", locationID).
			Str("date", date.Format(model.DateLayout)).
			Int("conflicts", len(conflicts)).
			Msg("assignment conflicts detected")
	}
	return conflicts, message, nil
}

// RequestLeave records a leave request for the worker. With auto-approve
// enabled (the default; the business runs no approval workflow) the request
// becomes effective immediately.
func (s *Service) RequestLeave(ctx context.Context, workerID int64, startDate, endDate time.Time, reason string) (*model.LeaveRequest, error) {
	status := model.LeavePending
	if s.opts.LeaveAutoApprove {
		status = model.LeaveApproved
	}

	leave := &model.LeaveRequest{
		WorkerID:  workerID,
		StartDate: model.DateOnly(startDate),
		EndDate:   model.DateOnly(endDate),
		Status:    status,
		Reason:    reason,
	}
	if err := s.storage.CreateLeaveRequest(ctx, leave); err != nil {
		return nil, err
	}

	metrics.IncLeaveRequest(string(status))
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:     events.TypeLeaveCreated,
			WorkerID: workerID,
			Date:     leave.StartDate,
			Detail:   string(status),
		})
	}
	return leave, nil
}

// loadSnapshot gathers the consistent read the resolver works on.
func (s *Service) loadSnapshot(ctx context.Context, workerID, locationID int64, date time.Time) (hours.Snapshot, error) {
	leaves, err := s.storage.ListWorkerLeave(ctx, workerID, model.LeaveApproved)
	if err != nil {
		return hours.Snapshot{}, err
	}
	workerOverride, err := s.storage.GetWorkerOverride(ctx, workerID, locationID, date)
	if err != nil {
		return hours.Snapshot{}, err
	}
	locationOverride, err := s.storage.GetLocationOverride(ctx, locationID, date)
	if err != nil {
		return hours.Snapshot{}, err
	}
	assignment, err := s.storage.GetDateAssignment(ctx, workerID, locationID, date)
	if err != nil {
		return hours.Snapshot{}, err
	}
	weekly, err := s.storage.GetWeeklyHours(ctx, workerID, locationID)
	if err != nil {
		return hours.Snapshot{}, err
	}
	return hours.Snapshot{
		Leaves:           leaves,
		WorkerOverride:   workerOverride,
		LocationOverride: locationOverride,
		Assignment:       assignment,
		Weekly:           weekly,
	}, nil
}

// cacheKey embeds the worker and location data revisions so any schedule
// write invalidates prior answers without explicit deletion.
func (s *Service) cacheKey(ctx context.Context, workerID, locationID int64, date time.Time, durationMin int) (string, error) {
	if s.cache == nil {
		return "", nil
	}
	workerRev, err := s.storage.Revision(ctx, fmt.Sprintf("worker:%d", workerID))
	if err != nil {
		return "", fmt.Errorf("worker revision: %w", err)
	}
	locationRev, err := s.storage.Revision(ctx, fmt.Sprintf("location:%d", locationID))
	if err != nil {
		return "", fmt.Errorf("location revision: %w", err)
	}
	return fmt.Sprintf("avail:%d:%d:%s:%d:%d:w%d:l%d",
		workerID, locationID, date.Format(model.DateLayout),
		durationMin, s.opts.StepMinutes, workerRev, locationRev), nil
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]string, bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("availability cache read failed")
		return nil, false
	}
	var starts []string
	if err := json.Unmarshal([]byte(data), &starts); err != nil {
		return nil, false
	}
	return starts, true
}

func (s *Service) cacheSet(ctx context.Context, key string, starts []string) {
	if s.cache == nil || key == "" || s.opts.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(starts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("availability cache write failed")
	}
}
