package booking

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusCancelled, StatusCompleted} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusApproved} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestReservationCountsForConflicts(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusCompleted} {
		res := testReservation(dayAt(9, 0), dayAt(10, 0), s)
		if !res.CountsForConflicts() {
			t.Errorf("%s reservation should count for conflicts", s)
		}
	}
	for _, s := range []Status{StatusCancelled, StatusRejected} {
		res := testReservation(dayAt(9, 0), dayAt(10, 0), s)
		if res.CountsForConflicts() {
			t.Errorf("%s reservation should not count for conflicts", s)
		}
	}
}

func TestOperatingHoursContains(t *testing.T) {
	hours := OperatingHours{OpenHour: 7, CloseHour: 21}

	if !hours.Contains(dayAt(7, 0), dayAt(8, 0)) {
		t.Error("07:00-08:00 should be inside operating hours")
	}
	if !hours.Contains(dayAt(20, 0), dayAt(21, 0)) {
		t.Error("20:00-21:00 should be inside operating hours")
	}
	if hours.Contains(dayAt(6, 0), dayAt(7, 0)) {
		t.Error("06:00-07:00 should be outside operating hours")
	}
	if hours.Contains(dayAt(20, 30), dayAt(21, 30)) {
		t.Error("an interval past closing should be outside operating hours")
	}
}
