// Package slots generates bookable appointment start times by walking
// effective open intervals at a fixed step granularity.
package slots

import (
	"staffbook/internal/interval"
	"staffbook/internal/model"
)

// Default generation parameters, applied when the caller passes
// non-positive values.
const (
	DefaultStepMinutes     = 15
	DefaultDurationMinutes = 30
)

// Generate walks each open span at stepMin-minute steps from the span's
// start and returns every candidate [s, s+durationMin) that fits inside the
// span and overlaps none of the busy spans. Candidates never bridge the gap
// between two separate open spans. Open spans are expected ordered and
// non-overlapping, so the result is chronological and free of duplicates. An
// empty result means no availability, not an error.
func Generate(open, busy []interval.Span, durationMin, stepMin int) []interval.Span {
	if stepMin <= 0 {
		stepMin = DefaultStepMinutes
	}
	if durationMin <= 0 {
		durationMin = DefaultDurationMinutes
	}

	var accepted []interval.Span
	for _, window := range open {
		for cursor := window.Start; cursor+durationMin <= window.End; cursor += stepMin {
			candidate := interval.Span{Start: cursor, End: cursor + durationMin}
			if collides(candidate, busy) {
				continue
			}
			accepted = append(accepted, candidate)
		}
	}
	return accepted
}

// Starts is the presentation-facing form of Generate: accepted start times as
// ordered "HH:MM" strings.
func Starts(open, busy []interval.Span, durationMin, stepMin int) []string {
	accepted := Generate(open, busy, durationMin, stepMin)
	starts := make([]string, len(accepted))
	for i, span := range accepted {
		starts[i] = interval.FormatClock(span.Start)
	}
	return starts
}

// BusyFromAppointments converts a worker's appointments into busy spans,
// ignoring cancelled ones. An appointment that ends exactly when another
// starts blocks neither.
func BusyFromAppointments(appointments []model.Appointment) []interval.Span {
	slots := make([]model.TimeSlot, 0, len(appointments))
	for i := range appointments {
		if !appointments[i].IsActive() {
			continue
		}
		slots = append(slots, appointments[i].Slot())
	}
	return interval.FromSlots(slots)
}

func collides(candidate interval.Span, busy []interval.Span) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
