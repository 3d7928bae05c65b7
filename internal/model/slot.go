package model

// Slot is a single bookable time point derived from a discount rule.
// It is recomputed per request and never persisted.
type Slot struct {
	Time      string `json:"time"`
	Discount  int    `json:"discount"`
	Available bool   `json:"available"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	RuleID    int64  `json:"rule_id"`

	// End is the minute-of-day at which the slot stops accepting bookings:
	// the next step or the rule's time_end, whichever comes first. Zero
	// means one full step.
	End int `json:"-"`
}

// DaySlots groups the slots of one calendar date.
type DaySlots struct {
	Date  Date   `json:"date"`
	Slots []Slot `json:"slots"`
}
