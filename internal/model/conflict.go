package model

import "time"

// ConflictPair is one overlapping (proposed, existing) slot combination.
type ConflictPair struct {
	Proposed TimeSlot `json:"proposed"`
	Existing TimeSlot `json:"existing"`
}

// Conflict groups all overlaps between a proposed assignment and a worker's
// existing commitments at one other location on the same date. Conflicts are
// advisory: the caller decides whether to cancel or force the save.
type Conflict struct {
	WorkerID     int64          `json:"worker_id"`
	WorkerName   string         `json:"worker_name,omitempty"`
	Date         time.Time      `json:"date"`
	LocationID   int64          `json:"location_id"`
	LocationName string         `json:"location_name"`
	Pairs        []ConflictPair `json:"conflicting_pairs"`
}
