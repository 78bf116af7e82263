package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// transitions lists the allowed status moves. Rejected, Cancelled, and
// Completed are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether a reservation may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Facility is the bookable resource. Owned by an external catalog; the
// engine treats it as immutable input.
type Facility struct {
	ID       int64
	Name     string
	Hours    OperatingHours
	Capacity int64
}

// Reservation is a booking of one facility for a [Start, End) interval on a
// single calendar date.
type Reservation struct {
	ID              uuid.UUID
	FacilityID      int64
	RequesterID     int64
	Start           time.Time
	End             time.Time
	Status          Status
	Details         string
	ContactPhone    string
	CheckInAt       *time.Time
	CheckOutAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CountsForConflicts reports whether the reservation still blocks slots.
// Cancelled and rejected reservations stop counting immediately.
func (r *Reservation) CountsForConflicts() bool {
	return r.Status != StatusCancelled && r.Status != StatusRejected
}

// Overlaps reports whether the reservation's [Start, End) interval overlaps
// [start, end) by any positive duration.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return start.Before(r.End) && end.After(r.Start)
}

// SameDate reports whether the reservation starts on the given calendar date.
func (r *Reservation) SameDate(date time.Time) bool {
	y1, m1, d1 := r.Start.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
