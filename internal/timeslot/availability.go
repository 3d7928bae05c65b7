package timeslot

import "github.com/fairyhunter13/restoboost/internal/model"

// CountByLabel buckets booking start times (minute-of-day) into the slot they
// belong to, using the same matching as Generator.Covering. Bookings outside
// every slot are ignored.
func CountByLabel(slots []model.Slot, bookingMinutes []int, step int) map[string]int {
	if step <= 0 {
		step = DefaultStep
	}
	counts := make(map[string]int, len(slots))
	for _, m := range bookingMinutes {
		if idx := coveringIndex(slots, m, step); idx >= 0 {
			counts[slots[idx].Time]++
		}
	}
	return counts
}

// Annotate returns a copy of slots with Booked set from counts and Available
// set to booked < capacity.
func Annotate(slots []model.Slot, counts map[string]int) []model.Slot {
	out := make([]model.Slot, len(slots))
	for i, s := range slots {
		s.Booked = counts[s.Time]
		s.Available = s.Booked < s.Capacity
		out[i] = s
	}
	return out
}
