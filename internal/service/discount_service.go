package service

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/timeslot"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

// DiscountService manages discount rules.
type DiscountService struct {
	db             database.TxQuerier
	rules          DiscountRuleRepositoryInterface
	cache          SlotCache
	rejectOverlaps bool
}

// NewDiscountService creates a new DiscountService. When rejectOverlaps is
// set, rules overlapping another active rule of the restaurant are refused.
func NewDiscountService(db database.TxQuerier, rules DiscountRuleRepositoryInterface, cache SlotCache, rejectOverlaps bool) *DiscountService {
	return &DiscountService{
		db:             db,
		rules:          rules,
		cache:          cache,
		rejectOverlaps: rejectOverlaps,
	}
}

// ruleWindow parses and checks a rule's clock window and date range.
func ruleWindow(timeStart, timeEnd, validFrom, validTo string) (start, end string, from, to model.Date, err error) {
	startMin, err := timeslot.ParseClock(timeStart)
	if err != nil {
		return "", "", model.Date{}, model.Date{}, fmt.Errorf("%w: time_start: %v", ErrInvalidRequest, err)
	}
	endMin, err := timeslot.ParseClock(timeEnd)
	if err != nil {
		return "", "", model.Date{}, model.Date{}, fmt.Errorf("%w: time_end: %v", ErrInvalidRequest, err)
	}
	if startMin >= endMin {
		return "", "", model.Date{}, model.Date{}, ErrInvalidTimeWindow
	}

	from, err = model.ParseDate(validFrom)
	if err != nil {
		return "", "", model.Date{}, model.Date{}, fmt.Errorf("%w: valid_from: %v", ErrInvalidRequest, err)
	}
	to, err = model.ParseDate(validTo)
	if err != nil {
		return "", "", model.Date{}, model.Date{}, fmt.Errorf("%w: valid_to: %v", ErrInvalidRequest, err)
	}
	if from.After(to) {
		return "", "", model.Date{}, model.Date{}, ErrInvalidDateRange
	}
	return timeslot.FormatClock(startMin), timeslot.FormatClock(endMin), from, to, nil
}

func ruleFromRequest(req *model.DiscountRuleRequest) (*model.DiscountRule, error) {
	if req == nil || req.Discount == nil {
		return nil, ErrInvalidRequest
	}
	start, end, from, to, err := ruleWindow(req.TimeStart, req.TimeEnd, req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &model.DiscountRule{
		RestaurantID: req.RestaurantID,
		TimeStart:    start,
		TimeEnd:      end,
		Discount:     *req.Discount,
		Description:  req.Description,
		ValidFrom:    from,
		ValidTo:      to,
		MaxTables:    req.MaxTables,
		DayOfWeek:    req.DayOfWeek,
		IsActive:     active,
	}, nil
}

func (s *DiscountService) checkOverlap(ctx context.Context, rule *model.DiscountRule) error {
	if !s.rejectOverlaps || !rule.IsActive {
		return nil
	}
	overlaps, err := s.rules.HasOverlap(ctx, rule)
	if err != nil {
		return err
	}
	if overlaps {
		return ErrRuleOverlap
	}
	return nil
}

// Create stores a new rule.
// Returns ErrRestaurantNotFound when the restaurant doesn't exist.
func (s *DiscountService) Create(ctx context.Context, req *model.DiscountRuleRequest) (*model.DiscountRule, error) {
	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.rules.Insert(ctx, s.db, rule); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, rule.RestaurantID)
	return rule, nil
}

// Update replaces a rule.
// Returns ErrDiscountRuleNotFound when the rule doesn't exist.
func (s *DiscountService) Update(ctx context.Context, id int64, req *model.DiscountRuleRequest) (*model.DiscountRule, error) {
	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}
	existing, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get discount rule: %w", err)
	}
	if existing == nil {
		return nil, ErrDiscountRuleNotFound
	}

	rule.ID = id
	if err := s.checkOverlap(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.rules.Update(ctx, s.db, rule); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, rule.RestaurantID)
	if existing.RestaurantID != rule.RestaurantID {
		invalidate(ctx, s.cache, existing.RestaurantID)
	}
	return rule, nil
}

// Delete removes a rule.
func (s *DiscountService) Delete(ctx context.Context, id int64) error {
	restaurantID, err := s.rules.Delete(ctx, id)
	if err != nil {
		return err
	}
	invalidate(ctx, s.cache, restaurantID)
	return nil
}

// Get returns a rule by id.
func (s *DiscountService) Get(ctx context.Context, id int64) (*model.DiscountRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get discount rule: %w", err)
	}
	if rule == nil {
		return nil, ErrDiscountRuleNotFound
	}
	return rule, nil
}

// List returns the rules of a restaurant, or of all restaurants when restaurantID is 0.
func (s *DiscountService) List(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error) {
	return s.rules.List(ctx, restaurantID)
}
