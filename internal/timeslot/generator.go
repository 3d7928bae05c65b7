// Package timeslot expands discount rules into bookable slots for a date and
// annotates them with booking counts. Everything here is pure: callers load
// rules and bookings and pass them in.
package timeslot

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// OverlapPolicy decides which rule wins when two rules emit the same label.
type OverlapPolicy string

const (
	// HighestDiscount keeps the larger discount; equal discounts keep the lower rule id.
	HighestDiscount OverlapPolicy = "highest_discount"
	// EarliestRule keeps the rule with the lower id.
	EarliestRule OverlapPolicy = "earliest_rule"
)

const (
	// DefaultStep is the slot width in minutes.
	DefaultStep = 60
	// DefaultCapacity is used when a rule has no max_tables.
	DefaultCapacity = 4
	// MaxRangeDays bounds GenerateRange.
	MaxRangeDays = 31
)

// ErrInvalidRange is returned by GenerateRange for a day count outside 1..MaxRangeDays.
var ErrInvalidRange = errors.New("invalid day range")

// Generator turns discount rules into slots.
type Generator struct {
	Step            int
	Policy          OverlapPolicy
	DefaultCapacity int
}

// NewGenerator returns a Generator, replacing non-positive values with defaults.
func NewGenerator(step int, policy OverlapPolicy, defaultCapacity int) *Generator {
	if step <= 0 {
		step = DefaultStep
	}
	if policy != EarliestRule {
		policy = HighestDiscount
	}
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultCapacity
	}
	return &Generator{Step: step, Policy: policy, DefaultCapacity: defaultCapacity}
}

// Applies reports whether rule contributes slots on date: it must be active,
// date must be within [valid_from, valid_to], and a set day_of_week must
// match the date's weekday (0 = Monday).
func Applies(rule model.DiscountRule, date model.Date) bool {
	if !rule.IsActive {
		return false
	}
	if !date.Between(rule.ValidFrom, rule.ValidTo) {
		return false
	}
	if rule.DayOfWeek != nil && *rule.DayOfWeek != date.WeekdayIndex() {
		return false
	}
	return true
}

type candidate struct {
	minute int
	ruleID int64
	slot   model.Slot
}

// Generate returns the slots for date, ordered by time. Rules that do not
// apply, have unparsable clocks or an empty window are skipped. The result is
// never nil.
func (g *Generator) Generate(rules []model.DiscountRule, date model.Date) []model.Slot {
	step := g.Step
	if step <= 0 {
		step = DefaultStep
	}

	byLabel := make(map[int]candidate)
	for _, rule := range rules {
		if !Applies(rule, date) {
			continue
		}
		start, err := ParseClock(rule.TimeStart)
		if err != nil {
			continue
		}
		end, err := ParseClock(rule.TimeEnd)
		if err != nil || end <= start {
			continue
		}

		capacity := rule.MaxTables
		if capacity <= 0 {
			capacity = g.DefaultCapacity
		}
		if capacity <= 0 {
			capacity = DefaultCapacity
		}

		for m := start; m < end && m < MinutesPerDay; m += step {
			closes := min(m+step, end)
			c := candidate{
				minute: m,
				ruleID: rule.ID,
				slot: model.Slot{
					Time:      FormatClock(m),
					Discount:  rule.Discount,
					Available: true,
					Capacity:  capacity,
					RuleID:    rule.ID,
					End:       closes,
				},
			}
			if existing, ok := byLabel[m]; ok && !g.wins(c, existing) {
				continue
			}
			byLabel[m] = c
		}
	}

	out := make([]candidate, 0, len(byLabel))
	for _, c := range byLabel {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].minute < out[j].minute })

	slots := make([]model.Slot, 0, len(out))
	for _, c := range out {
		slots = append(slots, c.slot)
	}
	return slots
}

func (g *Generator) wins(c, existing candidate) bool {
	if g.Policy == HighestDiscount && c.slot.Discount != existing.slot.Discount {
		return c.slot.Discount > existing.slot.Discount
	}
	return c.ruleID < existing.ruleID
}

// GenerateRange returns slots for each of days consecutive dates starting at from.
func (g *Generator) GenerateRange(rules []model.DiscountRule, from model.Date, days int) ([]model.DaySlots, error) {
	if days < 1 || days > MaxRangeDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidRange, MaxRangeDays, days)
	}
	out := make([]model.DaySlots, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDays(i)
		out = append(out, model.DaySlots{Date: date, Slots: g.Generate(rules, date)})
	}
	return out, nil
}

// Covering returns the slot a booking at minute belongs to. A slot accepts
// bookings in [time, End); when several windows contain minute, the slot
// with the latest label wins, so an exact label match is always preferred.
func (g *Generator) Covering(slots []model.Slot, minute int) (model.Slot, bool) {
	step := g.Step
	if step <= 0 {
		step = DefaultStep
	}
	idx := coveringIndex(slots, minute, step)
	if idx < 0 {
		return model.Slot{}, false
	}
	return slots[idx], true
}

func coveringIndex(slots []model.Slot, minute, step int) int {
	best, bestStart := -1, -1
	for i, s := range slots {
		m, err := ParseClock(s.Time)
		if err != nil {
			continue
		}
		end := s.End
		if end <= m {
			end = m + step
		}
		if minute >= m && minute < end && m > bestStart {
			best, bestStart = i, m
		}
	}
	return best
}
