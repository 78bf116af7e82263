package booking

import "time"

// Policy holds the tunable temporal parameters for booking decisions. It is
// fetched fresh for every evaluation and never mutated by the engine.
type Policy struct {
	// MinimumLeadHours is how many hours in advance of its start a booking
	// must be made. A slot closer to now than this is not bookable.
	MinimumLeadHours int

	// CheckInLeadMinutes is how many minutes before the reservation start the
	// check-in window opens.
	CheckInLeadMinutes int

	// CheckInGraceMinutes is how many minutes after the reservation start the
	// check-in window stays open.
	CheckInGraceMinutes int

	// MinDwellMinutesBeforeCheckout is how many minutes must elapse after
	// check-in before check-out is permitted. Zero disables the dwell check.
	MinDwellMinutesBeforeCheckout int

	// CancelNoticeHours is how many hours before the reservation start a
	// requester may still cancel. Zero disables the cutoff.
	CancelNoticeHours int
}

// LeadDuration returns the minimum lead time as a duration.
func (p Policy) LeadDuration() time.Duration {
	return time.Duration(p.MinimumLeadHours) * time.Hour
}

// CheckInWindow returns the inclusive interval during which check-in is
// permitted for a reservation starting at start.
func (p Policy) CheckInWindow(start time.Time) (opens, closes time.Time) {
	opens = start.Add(-time.Duration(p.CheckInLeadMinutes) * time.Minute)
	closes = start.Add(time.Duration(p.CheckInGraceMinutes) * time.Minute)
	return opens, closes
}

// MinDwell returns the minimum time between check-in and check-out.
func (p Policy) MinDwell() time.Duration {
	return time.Duration(p.MinDwellMinutesBeforeCheckout) * time.Minute
}
