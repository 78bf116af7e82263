package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var testHours = OperatingHours{OpenHour: 7, CloseHour: 21}

func dayAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func testReservation(start, end time.Time, status Status) *Reservation {
	return &Reservation{
		ID:     uuid.New(),
		Start:  start,
		End:    end,
		Status: status,
	}
}

func TestGenerateSlots_CoversOperatingWindow(t *testing.T) {
	date := dayAt(0, 0)
	slots := GenerateSlots(testHours, date, dayAt(3, 0), 3)

	if len(slots) != 14 {
		t.Fatalf("expected 14 slots for 07:00-21:00, got %d", len(slots))
	}
	for i, slot := range slots {
		if slot.End.Sub(slot.Start) != time.Hour {
			t.Errorf("slot %d is not one hour: %v-%v", i, slot.Start, slot.End)
		}
		if i > 0 && !slot.Start.Equal(slots[i-1].End) {
			t.Errorf("slot %d is not contiguous with previous: %v vs %v", i, slot.Start, slots[i-1].End)
		}
	}
	if got := slots[0].Start; !got.Equal(dayAt(7, 0)) {
		t.Errorf("first slot starts at %v, want 07:00", got)
	}
	if got := slots[13].End; !got.Equal(dayAt(21, 0)) {
		t.Errorf("last slot ends at %v, want 21:00", got)
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	date := dayAt(0, 0)
	now := dayAt(9, 17)

	first := GenerateSlots(testHours, date, now, 2)
	second := GenerateSlots(testHours, date, now, 2)

	if len(first) != len(second) {
		t.Fatalf("slot counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("slot %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateSlots_PastAndLeadWindow(t *testing.T) {
	// Operating hours 07:00-21:00, now 07:36, lead 3h: 07:00 is past,
	// 08:00-10:00 are short of the lead window, 11:00 onward are available.
	date := dayAt(0, 0)
	now := dayAt(7, 36)

	slots := GenerateSlots(testHours, date, now, 3)

	wantAvailable := map[int]bool{}
	for hour := 7; hour < 21; hour++ {
		wantAvailable[hour] = hour >= 11
	}
	for _, slot := range slots {
		if got := slot.Available; got != wantAvailable[slot.Start.Hour()] {
			t.Errorf("slot %02d:00 available=%v, want %v", slot.Start.Hour(), got, wantAvailable[slot.Start.Hour()])
		}
	}
}

func TestGenerateSlots_SlotStartEqualNowIsPast(t *testing.T) {
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(9, 0), 0)
	for _, slot := range slots {
		if slot.Start.Hour() == 9 && slot.Available {
			t.Error("slot starting exactly at now should be past")
		}
		if slot.Start.Hour() == 10 && !slot.Available {
			t.Error("slot after now with zero lead should be available")
		}
	}
}

func TestGenerateSlots_EarlierDateAllPast(t *testing.T) {
	date := dayAt(0, 0).AddDate(0, 0, -1)
	slots := GenerateSlots(testHours, date, dayAt(0, 30), 0)

	if len(slots) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		if slot.Available {
			t.Errorf("slot %v on an earlier date should be unavailable", slot.Start)
		}
	}
}

func TestGenerateSlots_LeadBoundaryInclusive(t *testing.T) {
	// Lead 3h from 08:00: the 11:00 slot is exactly at the threshold and
	// must be available; 10:00 is one hour short.
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(8, 0), 3)
	for _, slot := range slots {
		switch slot.Start.Hour() {
		case 10:
			if slot.Available {
				t.Error("10:00 slot is inside the lead window and must be unavailable")
			}
		case 11:
			if !slot.Available {
				t.Error("11:00 slot is exactly at the lead threshold and must be available")
			}
		}
	}
}

func TestApplyConflicts_PartialHourBlocksWholeSlot(t *testing.T) {
	// A reservation 08:00-10:30 blocks 08:00, 09:00, and 10:00; 07:00 and
	// 11:00 are untouched.
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(0, 30), 0)
	for i := range slots {
		slots[i].Available = true
	}

	filtered := ApplyConflicts(slots, []*Reservation{
		testReservation(dayAt(8, 0), dayAt(10, 30), StatusApproved),
	})

	for _, slot := range filtered {
		blocked := slot.Start.Hour() >= 8 && slot.Start.Hour() <= 10
		if slot.Available == blocked {
			t.Errorf("slot %02d:00 available=%v, want %v", slot.Start.Hour(), slot.Available, !blocked)
		}
	}
}

func TestApplyConflicts_EndOnBoundaryDoesNotBlock(t *testing.T) {
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(0, 30), 0)
	for i := range slots {
		slots[i].Available = true
	}

	filtered := ApplyConflicts(slots, []*Reservation{
		testReservation(dayAt(9, 0), dayAt(10, 0), StatusApproved),
	})

	for _, slot := range filtered {
		switch slot.Start.Hour() {
		case 9:
			if slot.Available {
				t.Error("09:00 slot should be blocked by a 09:00-10:00 reservation")
			}
		case 10:
			if !slot.Available {
				t.Error("a reservation ending exactly at 10:00 must not block the 10:00 slot")
			}
		}
	}
}

func TestApplyConflicts_IgnoresCancelledAndRejected(t *testing.T) {
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(0, 30), 0)
	for i := range slots {
		slots[i].Available = true
	}

	filtered := ApplyConflicts(slots, []*Reservation{
		testReservation(dayAt(8, 0), dayAt(9, 0), StatusCancelled),
		testReservation(dayAt(9, 0), dayAt(10, 0), StatusRejected),
	})

	for _, slot := range filtered {
		if !slot.Available {
			t.Errorf("slot %02d:00 blocked by a cancelled or rejected reservation", slot.Start.Hour())
		}
	}
}

func TestApplyConflicts_NeverWidens(t *testing.T) {
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(12, 30), 0)

	filtered := ApplyConflicts(slots, nil)
	for i, slot := range filtered {
		if slot.Available && !slots[i].Available {
			t.Errorf("slot %02d:00 was re-enabled by ApplyConflicts", slot.Start.Hour())
		}
	}
}

func TestApplyConflicts_OverlappingReservationsIdempotent(t *testing.T) {
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(0, 30), 0)
	for i := range slots {
		slots[i].Available = true
	}

	one := ApplyConflicts(slots, []*Reservation{
		testReservation(dayAt(9, 0), dayAt(10, 0), StatusApproved),
	})
	many := ApplyConflicts(slots, []*Reservation{
		testReservation(dayAt(9, 0), dayAt(10, 0), StatusApproved),
		testReservation(dayAt(9, 0), dayAt(10, 0), StatusPending),
		testReservation(dayAt(9, 30), dayAt(10, 0), StatusApproved),
	})

	for i := range one {
		if one[i].Available != many[i].Available {
			t.Errorf("slot %02d:00 differs between one and many overlapping reservations", one[i].Start.Hour())
		}
	}
}

func TestApplyConflicts_OtherDateIgnored(t *testing.T) {
	slots := GenerateSlots(testHours, dayAt(0, 0), dayAt(0, 30), 0)
	for i := range slots {
		slots[i].Available = true
	}

	nextDay := dayAt(9, 0).AddDate(0, 0, 1)
	filtered := ApplyConflicts(slots, []*Reservation{
		testReservation(nextDay, nextDay.Add(time.Hour), StatusApproved),
	})

	for _, slot := range filtered {
		if !slot.Available {
			t.Errorf("slot %02d:00 blocked by a reservation on another date", slot.Start.Hour())
		}
	}
}
