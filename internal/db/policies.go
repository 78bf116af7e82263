package db

import (
	"context"
	"fmt"

	"github.com/campusbook/campusbook/internal/booking"
)

// Policies is the SQLite-backed policy store. The policy is a single global
// row; any failure to read it surfaces as booking.ErrPolicyUnavailable so
// the engine never falls back to guessed defaults.
type Policies struct {
	db *DB
}

func NewPolicies(database *DB) *Policies {
	return &Policies{db: database}
}

func (s *Policies) GetPolicy(ctx context.Context) (booking.Policy, error) {
	var policy booking.Policy
	err := s.db.QueryRowContext(ctx,
		`SELECT minimum_lead_hours, check_in_lead_minutes, check_in_grace_minutes,
		        min_dwell_minutes_before_checkout, cancel_notice_hours
		 FROM booking_policies WHERE id = 1`).
		Scan(&policy.MinimumLeadHours, &policy.CheckInLeadMinutes, &policy.CheckInGraceMinutes,
			&policy.MinDwellMinutesBeforeCheckout, &policy.CancelNoticeHours)
	if err != nil {
		return booking.Policy{}, fmt.Errorf("%w: %v", booking.ErrPolicyUnavailable, err)
	}
	return policy, nil
}

// SetPolicy replaces the global policy row.
func (s *Policies) SetPolicy(ctx context.Context, policy booking.Policy) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE booking_policies
		 SET minimum_lead_hours = ?, check_in_lead_minutes = ?, check_in_grace_minutes = ?,
		     min_dwell_minutes_before_checkout = ?, cancel_notice_hours = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = 1`,
		policy.MinimumLeadHours, policy.CheckInLeadMinutes, policy.CheckInGraceMinutes,
		policy.MinDwellMinutesBeforeCheckout, policy.CancelNoticeHours)
	if err != nil {
		return fmt.Errorf("update booking policy: %w", err)
	}
	return nil
}
