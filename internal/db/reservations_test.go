package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusbook/campusbook/internal/booking"
	"github.com/campusbook/campusbook/internal/db"
	"github.com/campusbook/campusbook/internal/testutil"
)

func newReservation(facilityID int64, start, end time.Time, status booking.Status) *booking.Reservation {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	return &booking.Reservation{
		ID:          uuid.New(),
		FacilityID:  facilityID,
		RequesterID: 42,
		Start:       start,
		End:         end,
		Status:      status,
		Details:     "study group",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestReservations_CreateGetRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewReservations(database)
	ctx := context.Background()

	res := newReservation(1, at(9, 0), at(11, 0), booking.StatusPending)
	if err := store.CreateReservation(ctx, res); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	got, err := store.GetReservation(ctx, res.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if got.ID != res.ID || got.FacilityID != res.FacilityID || got.Status != booking.StatusPending {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.Start.Equal(res.Start) || !got.End.Equal(res.End) {
		t.Errorf("times differ: got %v-%v, want %v-%v", got.Start, got.End, res.Start, res.End)
	}
	if got.CheckInAt != nil || got.CheckOutAt != nil {
		t.Error("new reservation should have no check-in or check-out timestamps")
	}
}

func TestReservations_GetMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewReservations(database)

	_, err := store.GetReservation(context.Background(), uuid.New())
	if !errors.Is(err, booking.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestReservations_CreateRefusesOverlap(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewReservations(database)
	ctx := context.Background()

	if err := store.CreateReservation(ctx, newReservation(1, at(9, 0), at(11, 0), booking.StatusPending)); err != nil {
		t.Fatalf("create first reservation: %v", err)
	}

	// A second submission for an overlapping interval loses the race.
	err := store.CreateReservation(ctx, newReservation(1, at(10, 0), at(12, 0), booking.StatusPending))
	var verr booking.ValidationError
	if !errors.As(err, &verr) || verr.Code != booking.ValidationSlotTaken {
		t.Fatalf("expected slot_taken validation error, got %v", err)
	}

	// Back-to-back intervals do not conflict.
	if err := store.CreateReservation(ctx, newReservation(1, at(11, 0), at(12, 0), booking.StatusPending)); err != nil {
		t.Fatalf("create adjacent reservation: %v", err)
	}

	// Same interval on another facility does not conflict.
	if err := store.CreateReservation(ctx, newReservation(2, at(9, 0), at(11, 0), booking.StatusPending)); err != nil {
		t.Fatalf("create reservation on other facility: %v", err)
	}
}

func TestReservations_CancelledDoesNotBlockCreate(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewReservations(database)
	ctx := context.Background()

	cancelled := newReservation(1, at(9, 0), at(10, 0), booking.StatusCancelled)
	if err := store.CreateReservation(ctx, cancelled); err != nil {
		t.Fatalf("create cancelled reservation: %v", err)
	}

	if err := store.CreateReservation(ctx, newReservation(1, at(9, 0), at(10, 0), booking.StatusPending)); err != nil {
		t.Fatalf("cancelled reservation should not block: %v", err)
	}
}

func TestReservations_ListForDate(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewReservations(database)
	ctx := context.Background()

	onDate := newReservation(1, at(9, 0), at(10, 0), booking.StatusApproved)
	nextDay := newReservation(1, at(9, 0).AddDate(0, 0, 1), at(10, 0).AddDate(0, 0, 1), booking.StatusApproved)
	otherFacility := newReservation(2, at(14, 0), at(15, 0), booking.StatusPending)
	for _, res := range []*booking.Reservation{onDate, nextDay, otherFacility} {
		if err := store.CreateReservation(ctx, res); err != nil {
			t.Fatalf("create reservation: %v", err)
		}
	}

	listed, err := store.ListForDate(ctx, 1, at(0, 0))
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d reservations, want 1", len(listed))
	}
	if listed[0].ID != onDate.ID {
		t.Errorf("listed wrong reservation: %s", listed[0].ID)
	}
}

func TestReservations_UpdateAndNoShows(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewReservations(database)
	ctx := context.Background()

	res := newReservation(1, at(9, 0), at(10, 0), booking.StatusApproved)
	if err := store.CreateReservation(ctx, res); err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	other := newReservation(1, at(11, 0), at(12, 0), booking.StatusApproved)
	if err := store.CreateReservation(ctx, other); err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	// Check the second one in; it should drop out of the no-show list.
	checkIn := at(11, 2)
	other.CheckInAt = &checkIn
	other.UpdatedAt = checkIn
	if err := store.UpdateReservation(ctx, other); err != nil {
		t.Fatalf("update reservation: %v", err)
	}

	noShows, err := store.ListNoShows(ctx, at(12, 30))
	if err != nil {
		t.Fatalf("list no-shows: %v", err)
	}
	if len(noShows) != 1 || noShows[0].ID != res.ID {
		t.Fatalf("no-show list = %v, want only %s", noShows, res.ID)
	}

	missing := newReservation(1, at(13, 0), at(14, 0), booking.StatusPending)
	if err := store.UpdateReservation(ctx, missing); !errors.Is(err, booking.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound updating missing row, got %v", err)
	}
}

func TestPolicies_GetAndSet(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewPolicies(database)
	ctx := context.Background()

	policy, err := store.GetPolicy(ctx)
	if err != nil {
		t.Fatalf("get seeded policy: %v", err)
	}
	if policy.MinimumLeadHours != 3 {
		t.Errorf("seeded minimum lead hours = %d, want 3", policy.MinimumLeadHours)
	}

	policy.MinimumLeadHours = 6
	policy.MinDwellMinutesBeforeCheckout = 45
	if err := store.SetPolicy(ctx, policy); err != nil {
		t.Fatalf("set policy: %v", err)
	}

	updated, err := store.GetPolicy(ctx)
	if err != nil {
		t.Fatalf("get updated policy: %v", err)
	}
	if updated.MinimumLeadHours != 6 || updated.MinDwellMinutesBeforeCheckout != 45 {
		t.Errorf("updated policy = %+v", updated)
	}
}

func TestPolicies_UnavailableWhenRowMissing(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	if _, err := database.ExecContext(ctx, `DELETE FROM booking_policies`); err != nil {
		t.Fatalf("clear policy table: %v", err)
	}

	_, err := db.NewPolicies(database).GetPolicy(ctx)
	if !errors.Is(err, booking.ErrPolicyUnavailable) {
		t.Fatalf("expected ErrPolicyUnavailable, got %v", err)
	}
}

func TestFacilities_GetAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := db.NewFacilities(database)
	ctx := context.Background()

	facilities, err := store.ListFacilities(ctx)
	if err != nil {
		t.Fatalf("list facilities: %v", err)
	}
	if len(facilities) != 3 {
		t.Fatalf("seeded facility count = %d, want 3", len(facilities))
	}

	facility, err := store.GetFacility(ctx, facilities[0].ID)
	if err != nil {
		t.Fatalf("get facility: %v", err)
	}
	if facility.Hours.OpenHour != 7 || facility.Hours.CloseHour != 21 {
		t.Errorf("facility hours = %+v, want 07:00-21:00", facility.Hours)
	}

	if _, err := store.GetFacility(ctx, 9999); !errors.Is(err, booking.ErrFacilityNotFound) {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
}
