package model

import "time"

// Appointment statuses. Only non-cancelled appointments occupy time.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a booked service for a worker at a location.
type Appointment struct {
	ID         int64     `json:"id"`
	WorkerID   int64     `json:"worker_id"`
	LocationID int64     `json:"location_id"`
	Date       time.Time `json:"date"`
	Start      string    `json:"start"` // "HH:MM"
	End        string    `json:"end"`   // "HH:MM"
	Status     string    `json:"status"`
	ClientName string    `json:"client_name,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsActive reports whether the appointment still occupies its time slot.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentCancelled
}

// Slot returns the appointment's time range as a TimeSlot.
func (a *Appointment) Slot() TimeSlot {
	return TimeSlot{Start: a.Start, End: a.End}
}

// Worker is a bookable staff member.
type Worker struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a physical site where workers take appointments.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
