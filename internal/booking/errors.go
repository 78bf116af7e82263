package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPolicyUnavailable is returned when the policy store cannot supply
	// the temporal tunables. The engine never substitutes defaults; callers
	// decide whether to block bookings or retry.
	ErrPolicyUnavailable = errors.New("booking policy unavailable")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrFacilityNotFound    = errors.New("facility not found")
)

// ValidationCode identifies why a booking submission was rejected.
type ValidationCode string

const (
	ValidationInvalidRange   ValidationCode = "invalid_range"
	ValidationOutsideHours   ValidationCode = "outside_operating_hours"
	ValidationLeadTime       ValidationCode = "lead_time_too_short"
	ValidationSlotTaken      ValidationCode = "slot_taken"
	ValidationReasonRequired ValidationCode = "rejection_reason_required"
)

// ValidationError rejects a booking request before any reservation is
// created. The code tells the caller which user-facing message applies.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("booking rejected (%s): %s", e.Code, e.Message)
}

// RefusalCode identifies why a lifecycle transition was refused.
type RefusalCode string

const (
	RefusalTooEarly          RefusalCode = "too_early"
	RefusalTooLate           RefusalCode = "too_late"
	RefusalWrongState        RefusalCode = "wrong_state"
	RefusalAlreadyCheckedIn  RefusalCode = "already_checked_in"
	RefusalNotCheckedIn      RefusalCode = "not_checked_in"
	RefusalAlreadyCheckedOut RefusalCode = "already_checked_out"
	RefusalDwellNotMet       RefusalCode = "dwell_not_met"
	RefusalCutoffPassed      RefusalCode = "cancel_cutoff_passed"
)

// RefusalError refuses a check-in, check-out, or cancel without changing the
// reservation. Wait carries the remaining time for too-early and dwell
// refusals so callers can show an accurate countdown.
type RefusalError struct {
	Code    RefusalCode
	Message string
	Wait    time.Duration
}

func (e RefusalError) Error() string {
	return fmt.Sprintf("transition refused (%s): %s", e.Code, e.Message)
}
