package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/campusbook/campusbook/internal/clock"
)

// PolicyStore supplies the current booking policy. Implementations may fail;
// the engine surfaces that as ErrPolicyUnavailable rather than guessing
// defaults.
type PolicyStore interface {
	GetPolicy(ctx context.Context) (Policy, error)
}

// FacilityStore supplies facility records from the external catalog.
type FacilityStore interface {
	GetFacility(ctx context.Context, id int64) (Facility, error)
}

// ReservationStore persists reservations. Create must provide at-most-one-
// winner semantics when two submissions race for the same interval.
type ReservationStore interface {
	GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListForDate(ctx context.Context, facilityID int64, date time.Time) ([]*Reservation, error)
	CreateReservation(ctx context.Context, res *Reservation) error
	UpdateReservation(ctx context.Context, res *Reservation) error
	ListNoShows(ctx context.Context, before time.Time) ([]*Reservation, error)
}

// Engine implements slot availability and the reservation lifecycle. It is
// stateless: every operation reads the clock once, fetches policy fresh, and
// evaluates against the current reservation set.
type Engine struct {
	policies     PolicyStore
	facilities   FacilityStore
	reservations ReservationStore
	clock        clock.Clock
}

// NewEngine builds an engine over the supplied collaborators.
func NewEngine(policies PolicyStore, facilities FacilityStore, reservations ReservationStore, clk clock.Clock) (*Engine, error) {
	if policies == nil || facilities == nil || reservations == nil {
		return nil, errors.New("booking engine requires policy, facility, and reservation stores")
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Engine{
		policies:     policies,
		facilities:   facilities,
		reservations: reservations,
		clock:        clk,
	}, nil
}

func (e *Engine) policy(ctx context.Context) (Policy, error) {
	policy, err := e.policies.GetPolicy(ctx)
	if err != nil {
		if errors.Is(err, ErrPolicyUnavailable) {
			return Policy{}, err
		}
		return Policy{}, fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	return policy, nil
}

// ComputeAvailability returns the slot grid for one facility and date, with
// availability narrowed by elapsed time, the lead-time policy, and existing
// reservations.
func (e *Engine) ComputeAvailability(ctx context.Context, facilityID int64, date time.Time) ([]TimeSlot, error) {
	now := e.clock.Now()

	policy, err := e.policy(ctx)
	if err != nil {
		return nil, err
	}

	facility, err := e.facilities.GetFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	reservations, err := e.reservations.ListForDate(ctx, facilityID, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations for facility %d: %w", facilityID, err)
	}

	slots := GenerateSlots(facility.Hours, date, now, policy.MinimumLeadHours)
	return ApplyConflicts(slots, reservations), nil
}

// BookingRequest is a submission for a new reservation. Start and End must be
// well-typed timestamps already normalized by the caller.
type BookingRequest struct {
	FacilityID   int64
	RequesterID  int64
	Start        time.Time
	End          time.Time
	Details      string
	ContactPhone string
}

// SubmitBooking validates the request against current policy and current
// reservations at the instant of submission and creates a Pending
// reservation. Validation failures return ValidationError; no reservation is
// created.
func (e *Engine) SubmitBooking(ctx context.Context, req BookingRequest) (*Reservation, error) {
	now := e.clock.Now()
	logger := log.Ctx(ctx).With().
		Str("component", "booking_engine").
		Int64("facility_id", req.FacilityID).
		Int64("requester_id", req.RequesterID).
		Time("start", req.Start).
		Time("end", req.End).
		Logger()

	policy, err := e.policy(ctx)
	if err != nil {
		return nil, err
	}

	facility, err := e.facilities.GetFacility(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}

	if !req.End.After(req.Start) {
		return nil, ValidationError{Code: ValidationInvalidRange, Message: "end must be after start"}
	}
	if !sameDate(req.Start, req.End) && !isDayClose(req.End, facility.Hours) {
		return nil, ValidationError{Code: ValidationInvalidRange, Message: "booking must fall on a single date"}
	}
	if !facility.Hours.Contains(req.Start, req.End) {
		return nil, ValidationError{
			Code:    ValidationOutsideHours,
			Message: fmt.Sprintf("facility is bookable %02d:00-%02d:00", facility.Hours.OpenHour, facility.Hours.CloseHour),
		}
	}
	if !req.Start.After(now) || req.Start.Sub(now) < policy.LeadDuration() {
		return nil, ValidationError{
			Code:    ValidationLeadTime,
			Message: fmt.Sprintf("bookings require %d hours notice", policy.MinimumLeadHours),
		}
	}

	reservations, err := e.reservations.ListForDate(ctx, req.FacilityID, req.Start)
	if err != nil {
		return nil, fmt.Errorf("list reservations for facility %d: %w", req.FacilityID, err)
	}

	slots := ApplyConflicts(GenerateSlots(facility.Hours, req.Start, now, policy.MinimumLeadHours), reservations)
	for _, slot := range slots {
		if !slot.Overlaps(req.Start, req.End) {
			continue
		}
		if !slot.Available {
			logger.Info().Time("slot_start", slot.Start).Str("decision", "rejected").Msg("Requested interval overlaps an unavailable slot")
			return nil, ValidationError{Code: ValidationSlotTaken, Message: "requested time is no longer available"}
		}
	}

	res := &Reservation{
		ID:           uuid.New(),
		FacilityID:   req.FacilityID,
		RequesterID:  req.RequesterID,
		Start:        req.Start,
		End:          req.End,
		Status:       StatusPending,
		Details:      req.Details,
		ContactPhone: req.ContactPhone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store serializes its own availability re-check with the insert so
	// that at most one of two racing submissions wins.
	if err := e.reservations.CreateReservation(ctx, res); err != nil {
		return nil, err
	}

	logger.Info().Str("reservation_id", res.ID.String()).Str("decision", "created").Msg("Booking submitted")
	return res, nil
}

// Overlaps reports whether the slot overlaps [start, end) by any positive
// duration.
func (s TimeSlot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}

// Approve moves a pending reservation to approved.
func (e *Engine) Approve(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return e.transition(ctx, id, StatusApproved, func(res *Reservation, _ Policy, _ time.Time) error {
		return nil
	})
}

// Reject moves a pending reservation to rejected. A reason is required.
func (e *Engine) Reject(ctx context.Context, id uuid.UUID, reason string) (*Reservation, error) {
	if reason == "" {
		return nil, ValidationError{Code: ValidationReasonRequired, Message: "a rejection reason is required"}
	}
	return e.transition(ctx, id, StatusRejected, func(res *Reservation, _ Policy, _ time.Time) error {
		res.RejectionReason = reason
		return nil
	})
}

// Cancel moves a pending or approved reservation to cancelled, subject to the
// policy's notice cutoff. The reservation immediately stops blocking slots.
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return e.transition(ctx, id, StatusCancelled, func(res *Reservation, policy Policy, now time.Time) error {
		if policy.CancelNoticeHours <= 0 {
			return nil
		}
		notice := time.Duration(policy.CancelNoticeHours) * time.Hour
		if res.Start.Sub(now) < notice {
			return RefusalError{
				Code:    RefusalCutoffPassed,
				Message: fmt.Sprintf("cancellations require %d hours notice", policy.CancelNoticeHours),
			}
		}
		return nil
	})
}

// CheckIn records arrival for an approved reservation. Permitted only while
// now falls inside the inclusive [start-lead, start+grace] window; refusals
// distinguish too early from too late so callers can show a wait time.
func (e *Engine) CheckIn(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	now := e.clock.Now()

	policy, err := e.policy(ctx)
	if err != nil {
		return nil, err
	}

	res, err := e.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.Status != StatusApproved {
		return nil, RefusalError{
			Code:    RefusalWrongState,
			Message: fmt.Sprintf("check-in requires an approved reservation, not %s", res.Status),
		}
	}
	if res.CheckInAt != nil {
		return nil, RefusalError{Code: RefusalAlreadyCheckedIn, Message: "reservation is already checked in"}
	}

	opens, closes := policy.CheckInWindow(res.Start)
	switch {
	case now.Before(opens):
		return nil, RefusalError{
			Code:    RefusalTooEarly,
			Message: fmt.Sprintf("check-in opens at %s", opens.Format("15:04")),
			Wait:    opens.Sub(now),
		}
	case now.After(closes):
		return nil, RefusalError{
			Code:    RefusalTooLate,
			Message: fmt.Sprintf("check-in closed at %s", closes.Format("15:04")),
		}
	}

	checkIn := now
	res.CheckInAt = &checkIn
	res.UpdatedAt = now
	if err := e.reservations.UpdateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("record check-in for reservation %s: %w", res.ID, err)
	}

	log.Ctx(ctx).Info().
		Str("component", "booking_engine").
		Str("reservation_id", res.ID.String()).
		Time("check_in_at", checkIn).
		Str("decision", "checked_in").
		Msg("Reservation checked in")
	return res, nil
}

// CheckOut records departure and completes the reservation. Permitted only
// after check-in, once the minimum dwell time has elapsed.
func (e *Engine) CheckOut(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	now := e.clock.Now()

	policy, err := e.policy(ctx)
	if err != nil {
		return nil, err
	}

	res, err := e.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.Status != StatusApproved && res.Status != StatusCompleted {
		return nil, RefusalError{
			Code:    RefusalWrongState,
			Message: fmt.Sprintf("check-out requires an approved reservation, not %s", res.Status),
		}
	}
	if res.CheckInAt == nil {
		return nil, RefusalError{Code: RefusalNotCheckedIn, Message: "reservation has not been checked in"}
	}
	if res.CheckOutAt != nil {
		return nil, RefusalError{Code: RefusalAlreadyCheckedOut, Message: "reservation is already checked out"}
	}

	if dwell := policy.MinDwell(); now.Sub(*res.CheckInAt) < dwell {
		remaining := dwell - now.Sub(*res.CheckInAt)
		return nil, RefusalError{
			Code:    RefusalDwellNotMet,
			Message: fmt.Sprintf("check-out is permitted %d minutes after check-in", policy.MinDwellMinutesBeforeCheckout),
			Wait:    remaining,
		}
	}

	checkOut := now
	res.CheckOutAt = &checkOut
	res.Status = StatusCompleted
	res.UpdatedAt = now
	if err := e.reservations.UpdateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("record check-out for reservation %s: %w", res.ID, err)
	}

	log.Ctx(ctx).Info().
		Str("component", "booking_engine").
		Str("reservation_id", res.ID.String()).
		Time("check_out_at", checkOut).
		Str("decision", "completed").
		Msg("Reservation checked out")
	return res, nil
}

// SweepNoShows cancels approved reservations whose interval has fully passed
// without a check-in. It returns the number of reservations swept.
func (e *Engine) SweepNoShows(ctx context.Context) (int, error) {
	now := e.clock.Now()
	logger := log.Ctx(ctx).With().
		Str("component", "booking_engine").
		Time("sweep_time", now).
		Logger()

	noShows, err := e.reservations.ListNoShows(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list no-show reservations: %w", err)
	}

	swept := 0
	for _, res := range noShows {
		if !CanTransition(res.Status, StatusCancelled) {
			continue
		}
		res.Status = StatusCancelled
		res.UpdatedAt = now
		if err := e.reservations.UpdateReservation(ctx, res); err != nil {
			return swept, fmt.Errorf("cancel no-show reservation %s: %w", res.ID, err)
		}
		swept++
		logger.Info().
			Str("reservation_id", res.ID.String()).
			Time("start", res.Start).
			Str("decision", "no_show").
			Msg("Cancelled no-show reservation")
	}

	return swept, nil
}

// transition applies a guarded status change. The guard may veto with a
// RefusalError before any mutation happens.
func (e *Engine) transition(ctx context.Context, id uuid.UUID, to Status, guard func(*Reservation, Policy, time.Time) error) (*Reservation, error) {
	now := e.clock.Now()

	policy, err := e.policy(ctx)
	if err != nil {
		return nil, err
	}

	res, err := e.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(res.Status, to) {
		return nil, RefusalError{
			Code:    RefusalWrongState,
			Message: fmt.Sprintf("cannot move reservation from %s to %s", res.Status, to),
		}
	}
	if err := guard(res, policy, now); err != nil {
		return nil, err
	}

	from := res.Status
	res.Status = to
	res.UpdatedAt = now
	if err := e.reservations.UpdateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("update reservation %s: %w", res.ID, err)
	}

	log.Ctx(ctx).Info().
		Str("component", "booking_engine").
		Str("reservation_id", res.ID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Reservation status changed")
	return res, nil
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDayClose allows an end timestamp exactly on the closing boundary, which
// formats as the same date but would fail a naive same-date check when the
// facility closes at midnight.
func isDayClose(end time.Time, hours OperatingHours) bool {
	return end.Hour()*60+end.Minute() == 0 && hours.CloseHour == 24
}
