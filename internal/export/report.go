package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"staffbook/internal/model"
)

// Storage is the subset of the storage layer the reporter reads.
type Storage interface {
	ListActiveLocations(ctx context.Context) ([]model.Location, error)
	GetWorker(ctx context.Context, id int64) (*model.Worker, error)
	ListWorkerAppointments(ctx context.Context, workerID int64, date time.Time) ([]model.Appointment, error)
}

// Reporter builds per-location appointment reports.
type Reporter struct {
	storage Storage
	writer  func() SheetWriter
}

// NewReporter wires a reporter; writerFactory is typically NewExcelWriter.
func NewReporter(storage Storage, writerFactory func() SheetWriter) *Reporter {
	return &Reporter{storage: storage, writer: writerFactory}
}

var appointmentColumns = []string{"Date", "Start", "End", "Worker", "Client", "Status"}

// WriteAppointmentReport writes one sheet per active location listing the
// given workers' non-cancelled appointments over an inclusive date range.
func (r *Reporter) WriteAppointmentReport(ctx context.Context, out io.Writer, workerIDs []int64, from, to time.Time) error {
	locations, err := r.storage.ListActiveLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	if len(locations) == 0 {
		return fmt.Errorf("no active locations to report")
	}

	w := r.writer()
	defer w.Close()

	names := make(map[int64]string, len(workerIDs))
	for _, id := range workerIDs {
		worker, err := r.storage.GetWorker(ctx, id)
		if err != nil {
			return fmt.Errorf("get worker %d: %w", id, err)
		}
		names[id] = worker.Name
	}

	for _, location := range locations {
		if err := w.AddSheet(location.Name); err != nil {
			return err
		}
		if err := w.WriteHeader(appointmentColumns); err != nil {
			return err
		}

		for day := model.DateOnly(from); !day.After(model.DateOnly(to)); day = day.AddDate(0, 0, 1) {
			for _, workerID := range workerIDs {
				appointments, err := r.storage.ListWorkerAppointments(ctx, workerID, day)
				if err != nil {
					return fmt.Errorf("list appointments: %w", err)
				}
				for _, a := range appointments {
					if a.LocationID != location.ID {
						continue
					}
					row := []interface{}{
						a.Date.Format(model.DateLayout), a.Start, a.End,
						names[a.WorkerID], a.ClientName, a.Status,
					}
					if err := w.WriteRow(row); err != nil {
						return err
					}
				}
			}
		}
	}

	return w.Save(out)
}
