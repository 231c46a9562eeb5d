// Package interval provides half-open time range primitives over
// minutes-since-midnight values. All comparisons use [start, end)
// semantics: two spans that merely touch do not overlap.
package interval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"staffbook/internal/model"
)

// Span is a half-open range [Start, End) in minutes since midnight.
type Span struct {
	Start int
	End   int
}

// ParseClock parses a zero-padded 24h "HH:MM" value into minutes since
// midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time: %s", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FromSlot converts a TimeSlot into a Span. Slots with start >= end or
// unparsable times are rejected.
func FromSlot(slot model.TimeSlot) (Span, error) {
	start, err := ParseClock(slot.Start)
	if err != nil {
		return Span{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := ParseClock(slot.End)
	if err != nil {
		return Span{}, fmt.Errorf("parse end: %w", err)
	}
	if start >= end {
		return Span{}, fmt.Errorf("inverted slot: %s-%s", slot.Start, slot.End)
	}
	return Span{Start: start, End: end}, nil
}

// FromSlots converts a slot list, silently skipping malformed entries.
// Upstream validation should reject them, but this layer must not crash on a
// validation gap. The result is sorted by start time.
func FromSlots(slots []model.TimeSlot) []Span {
	spans := make([]Span, 0, len(slots))
	for _, slot := range slots {
		span, err := FromSlot(slot)
		if err != nil {
			continue
		}
		spans = append(spans, span)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// ToSlot converts a Span back to its "HH:MM" form.
func (s Span) ToSlot() model.TimeSlot {
	return model.TimeSlot{Start: FormatClock(s.Start), End: FormatClock(s.End)}
}

// Duration returns the span length in minutes.
func (s Span) Duration() int {
	return s.End - s.Start
}

// Overlaps reports whether two half-open spans share any time.
// [a, b) and [c, d) overlap iff a < d && c < b.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Contains reports whether the other span lies fully inside this one.
// Boundaries may touch.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Intersect returns the common part of two spans and whether it is non-empty.
func (s Span) Intersect(other Span) (Span, bool) {
	start := s.Start
	if other.Start > start {
		start = other.Start
	}
	end := s.End
	if other.End < end {
		end = other.End
	}
	if start >= end {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// IntersectAll clamps each span in a to the open time of b, returning the
// ordered intersection of the two sets.
func IntersectAll(a, b []Span) []Span {
	var result []Span
	for _, outer := range a {
		for _, clamp := range b {
			if common, ok := outer.Intersect(clamp); ok {
				result = append(result, common)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start < result[j].Start })
	return result
}

// ToSlots converts spans back to their "HH:MM" form.
func ToSlots(spans []Span) []model.TimeSlot {
	slots := make([]model.TimeSlot, len(spans))
	for i, s := range spans {
		slots[i] = s.ToSlot()
	}
	return slots
}
