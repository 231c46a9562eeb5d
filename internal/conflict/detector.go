// Package conflict detects overlaps between a proposed worker time
// assignment and that worker's existing commitments at other locations on
// the same date, and formats them for display.
package conflict

import (
	"strings"
	"time"

	"staffbook/internal/interval"
	"staffbook/internal/model"
)

// LocationSlots is one other location's slot set for the worker on the date
// under consideration.
type LocationSlots struct {
	LocationID   int64
	LocationName string
	Slots        []model.TimeSlot
}

// Detect cross-checks the proposed slots against every other location's
// slots and returns one Conflict per location that produced at least one
// overlapping pair. Pairs keep the order the proposed slots were supplied
// in; locations keep the order of others. No overlap anywhere yields an
// empty result. Detection is advisory: the caller decides whether to cancel
// the proposal or force-save it.
func Detect(workerID int64, workerName string, date time.Time, proposed []model.TimeSlot, others []LocationSlots) []model.Conflict {
	proposedSpans := pairedSpans(proposed)

	var conflicts []model.Conflict
	for _, other := range others {
		existingSpans := pairedSpans(other.Slots)

		var pairs []model.ConflictPair
		for _, p := range proposedSpans {
			for _, e := range existingSpans {
				if p.span.Overlaps(e.span) {
					pairs = append(pairs, model.ConflictPair{Proposed: p.slot, Existing: e.slot})
				}
			}
		}
		if len(pairs) == 0 {
			continue
		}
		conflicts = append(conflicts, model.Conflict{
			WorkerID:     workerID,
			WorkerName:   workerName,
			Date:         model.DateOnly(date),
			LocationID:   other.LocationID,
			LocationName: other.LocationName,
			Pairs:        pairs,
		})
	}
	return conflicts
}

type slotSpan struct {
	slot model.TimeSlot
	span interval.Span
}

// pairedSpans keeps the original slot next to its parsed span so reported
// pairs echo the caller's exact "HH:MM" values. Malformed slots are skipped.
func pairedSpans(slots []model.TimeSlot) []slotSpan {
	result := make([]slotSpan, 0, len(slots))
	for _, slot := range slots {
		span, err := interval.FromSlot(slot)
		if err != nil {
			continue
		}
		result = append(result, slotSpan{slot: slot, span: span})
	}
	return result
}

// Fixed separators of the formatted message; consumers test against the
// exact text.
const (
	pairSeparator     = "; "
	locationSeparator = "\n"
)

// FormatMessage renders conflicts as a stable human-readable summary:
// "<locationName>: <proposed> overlaps with <existing>" per pair, pairs
// joined with "; " and locations with newlines. No conflicts formats to the
// empty string.
func FormatMessage(conflicts []model.Conflict) string {
	if len(conflicts) == 0 {
		return ""
	}

	lines := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts := make([]string, 0, len(c.Pairs))
		for _, pair := range c.Pairs {
			parts = append(parts,
				c.LocationName+": "+pair.Proposed.Start+"-"+pair.Proposed.End+
					" overlaps with "+pair.Existing.Start+"-"+pair.Existing.End)
		}
		lines = append(lines, strings.Join(parts, pairSeparator))
	}
	return strings.Join(lines, locationSeparator)
}
