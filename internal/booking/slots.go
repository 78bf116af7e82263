package booking

import "time"

// slotDuration is the fixed width of a bookable slot.
const slotDuration = time.Hour

// OperatingHours is a facility's daily bookable window, as whole hours.
type OperatingHours struct {
	OpenHour  int // first bookable hour, e.g. 7 for 07:00
	CloseHour int // hour the facility closes, e.g. 21 for 21:00
}

// DefaultOperatingHours is the campus-wide 07:00–21:00 window.
var DefaultOperatingHours = OperatingHours{OpenHour: 7, CloseHour: 21}

// SlotCount returns the number of one-hour slots in the window.
func (h OperatingHours) SlotCount() int {
	if h.CloseHour <= h.OpenHour {
		return 0
	}
	return h.CloseHour - h.OpenHour
}

// Contains reports whether [start, end) lies fully inside the operating
// window on start's date.
func (h OperatingHours) Contains(start, end time.Time) bool {
	open := time.Date(start.Year(), start.Month(), start.Day(), h.OpenHour, 0, 0, 0, start.Location())
	closeAt := time.Date(start.Year(), start.Month(), start.Day(), h.CloseHour, 0, 0, 0, start.Location())
	return !start.Before(open) && !end.After(closeAt)
}

// TimeSlot is one fixed-width candidate booking interval for a single date.
// Slots are ephemeral: recomputed on every query, never persisted.
type TimeSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// GenerateSlots produces the canonical ordered slot list for a facility's
// operating window on date. Slot boundaries are fixed calendar points; the
// provisional available flag reflects only elapsed time and the minimum lead
// window, never reservations. For fixed inputs the output is identical on
// every call.
//
// A slot is unavailable when its start is at or before now, or when it is in
// the future but closer to now than minimumLeadHours. A slot exactly at the
// lead threshold is available.
func GenerateSlots(hours OperatingHours, date time.Time, now time.Time, minimumLeadHours int) []TimeSlot {
	lead := time.Duration(minimumLeadHours) * time.Hour

	slots := make([]TimeSlot, 0, hours.SlotCount())
	dayOpen := time.Date(date.Year(), date.Month(), date.Day(), hours.OpenHour, 0, 0, 0, date.Location())
	dayClose := time.Date(date.Year(), date.Month(), date.Day(), hours.CloseHour, 0, 0, 0, date.Location())

	for cursor := dayOpen; cursor.Before(dayClose); cursor = cursor.Add(slotDuration) {
		isPast := !cursor.After(now)
		withinLead := cursor.After(now) && cursor.Sub(now) < lead

		slots = append(slots, TimeSlot{
			Start:     cursor,
			End:       cursor.Add(slotDuration),
			Available: !isPast && !withinLead,
		})
	}

	return slots
}

// ApplyConflicts narrows slot availability against existing reservations.
// Only reservations that still count for conflicts and start on the slots'
// date qualify; each qualifying reservation marks every slot it overlaps by
// any positive duration as unavailable. The result never re-enables a slot,
// and multiple overlapping reservations are idempotent.
func ApplyConflicts(slots []TimeSlot, reservations []*Reservation) []TimeSlot {
	if len(slots) == 0 {
		return nil
	}

	out := make([]TimeSlot, len(slots))
	copy(out, slots)

	date := slots[0].Start
	for _, res := range reservations {
		if !res.CountsForConflicts() || !res.SameDate(date) {
			continue
		}
		for i := range out {
			if res.Overlaps(out[i].Start, out[i].End) {
				out[i].Available = false
			}
		}
	}

	return out
}
