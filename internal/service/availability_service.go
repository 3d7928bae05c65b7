package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/metrics"
	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/timeslot"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

// AvailabilityService computes bookable slots for a restaurant and date.
// Slots are derived on every call unless a cache is configured.
type AvailabilityService struct {
	db        database.TxQuerier
	rules     DiscountRuleRepositoryInterface
	bookings  BookingRepositoryInterface
	generator *timeslot.Generator
	cache     SlotCache
	loc       *time.Location
	now       func() time.Time
}

// NewAvailabilityService creates an AvailabilityService. cache may be nil.
func NewAvailabilityService(
	db database.TxQuerier,
	rules DiscountRuleRepositoryInterface,
	bookings BookingRepositoryInterface,
	generator *timeslot.Generator,
	cache SlotCache,
	loc *time.Location,
) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityService{
		db:        db,
		rules:     rules,
		bookings:  bookings,
		generator: generator,
		cache:     cache,
		loc:       loc,
		now:       time.Now,
	}
}

// Today returns the current calendar date in the configured timezone.
func (s *AvailabilityService) Today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

// Location returns the configured timezone.
func (s *AvailabilityService) Location() *time.Location {
	return s.loc
}

// Slots returns the annotated slots of a restaurant on date.
func (s *AvailabilityService) Slots(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, restaurantID, date)
		if err != nil {
			log.Warn().Err(err).Int64("restaurant_id", restaurantID).Msg("slot cache read failed")
		} else {
			metrics.IncSlotCache(ok)
			if ok {
				return cached, nil
			}
		}
	}

	slots, err := s.slotsOn(ctx, s.db, restaurantID, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, restaurantID, date, slots); err != nil {
			log.Warn().Err(err).Int64("restaurant_id", restaurantID).Msg("slot cache write failed")
		}
	}
	return slots, nil
}

// slotsOn generates and annotates slots using q, so booking creation can
// compute availability inside its transaction.
func (s *AvailabilityService) slotsOn(ctx context.Context, q database.TxQuerier, restaurantID int64, date model.Date) ([]model.Slot, error) {
	rules, err := s.rules.ListForDates(ctx, q, restaurantID, date, date)
	if err != nil {
		return nil, fmt.Errorf("load discount rules: %w", err)
	}
	times, err := s.bookings.ActiveTimes(ctx, q, restaurantID, date, date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("load booking times: %w", err)
	}

	slots := s.generator.Generate(rules, date)
	counts := timeslot.CountByLabel(slots, times[date.String()], s.generator.Step)
	return timeslot.Annotate(slots, counts), nil
}

// Range returns annotated slots for days consecutive dates starting at from.
func (s *AvailabilityService) Range(ctx context.Context, restaurantID int64, from model.Date, days int) ([]model.DaySlots, error) {
	if days < 1 || days > timeslot.MaxRangeDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidRequest, timeslot.MaxRangeDays)
	}
	to := from.AddDays(days - 1)

	rules, err := s.rules.ListForDates(ctx, s.db, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load discount rules: %w", err)
	}
	times, err := s.bookings.ActiveTimes(ctx, s.db, restaurantID, from, to, s.loc)
	if err != nil {
		return nil, fmt.Errorf("load booking times: %w", err)
	}

	out, err := s.generator.GenerateRange(rules, from, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for i, day := range out {
		counts := timeslot.CountByLabel(day.Slots, times[day.Date.String()], s.generator.Step)
		out[i].Slots = timeslot.Annotate(day.Slots, counts)
	}
	return out, nil
}
