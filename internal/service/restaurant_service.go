package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/timeslot"
	"github.com/fairyhunter13/restoboost/internal/validator"
)

const defaultRuleDescription = "all menu"

// RestaurantService provides business logic for restaurant listings.
type RestaurantService struct {
	pool         TxBeginner
	restaurants  RestaurantRepositoryInterface
	rules        DiscountRuleRepositoryInterface
	availability *AvailabilityService
	cache        SlotCache
	photos       PhotoStore

	// validityDays is how long a restaurant's default rule stays valid.
	validityDays int
	// defaultTables is the max_tables of rules created through the timeslot upsert.
	defaultTables int
}

// NewRestaurantService creates a new RestaurantService. cache and photos may be nil.
func NewRestaurantService(
	pool TxBeginner,
	restaurants RestaurantRepositoryInterface,
	rules DiscountRuleRepositoryInterface,
	availability *AvailabilityService,
	cache SlotCache,
	photos PhotoStore,
	validityDays, defaultTables int,
) *RestaurantService {
	if validityDays <= 0 {
		validityDays = 30
	}
	if defaultTables <= 0 {
		defaultTables = timeslot.DefaultCapacity
	}
	return &RestaurantService{
		pool:         pool,
		restaurants:  restaurants,
		rules:        rules,
		availability: availability,
		cache:        cache,
		photos:       photos,
		validityDays: validityDays,
		defaultTables: defaultTables,
	}
}

// List returns restaurants with the discount rules that apply today.
func (s *RestaurantService) List(ctx context.Context, filter model.RestaurantFilter) ([]model.RestaurantListItem, error) {
	filter.Limit = clampLimit(filter.Limit)
	restaurants, err := s.restaurants.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withTodaysRules(ctx, restaurants)
}

// Search returns active restaurants matching the criteria.
func (s *RestaurantService) Search(ctx context.Context, search model.RestaurantSearch) ([]model.RestaurantListItem, error) {
	search.Query = strings.TrimSpace(search.Query)
	search.Cuisine = strings.TrimSpace(search.Cuisine)
	search.Limit = clampLimit(search.Limit)
	restaurants, err := s.restaurants.Search(ctx, search)
	if err != nil {
		return nil, err
	}
	return s.withTodaysRules(ctx, restaurants)
}

func (s *RestaurantService) withTodaysRules(ctx context.Context, restaurants []model.Restaurant) ([]model.RestaurantListItem, error) {
	today := s.availability.Today()
	ids := make([]int64, 0, len(restaurants))
	for _, r := range restaurants {
		ids = append(ids, r.ID)
	}
	byRestaurant, err := s.rules.ListForRestaurantsOn(ctx, ids, today)
	if err != nil {
		return nil, fmt.Errorf("load today's rules: %w", err)
	}

	items := make([]model.RestaurantListItem, 0, len(restaurants))
	for _, r := range restaurants {
		todays := []model.DiscountRule{}
		for _, rule := range byRestaurant[r.ID] {
			if timeslot.Applies(rule, today) {
				todays = append(todays, rule)
			}
		}
		items = append(items, model.RestaurantListItem{Restaurant: r, Timeslots: todays})
	}
	return items, nil
}

// Get retrieves a restaurant by id.
// Returns ErrRestaurantNotFound if the restaurant doesn't exist.
func (s *RestaurantService) Get(ctx context.Context, id int64) (*model.Restaurant, error) {
	rest, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if rest == nil {
		return nil, ErrRestaurantNotFound
	}
	return rest, nil
}

// Create stores a restaurant together with its default discount rule,
// valid from today for the configured number of days.
func (s *RestaurantService) Create(ctx context.Context, req *model.CreateRestaurantRequest) (*model.RestaurantListItem, error) {
	if req == nil || req.Rating == nil || req.AvgCheck == nil || req.Discount == nil {
		return nil, ErrInvalidRequest
	}
	today := s.availability.Today()
	start, end, from, to, err := ruleWindow(req.TimeStart, req.TimeEnd,
		today.String(), today.AddDays(s.validityDays).String())
	if err != nil {
		return nil, err
	}

	rest := &model.Restaurant{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Rating:      *req.Rating,
		AvgCheck:    *req.AvgCheck,
		Address:     strings.TrimSpace(req.Address),
		Phone:       validator.NormalizePhone(req.Phone),
		Cuisine:     req.Cuisine,
		Description: req.Description,
		Photos:      []string{},
		IsActive:    true,
	}
	if rest.Cuisine == nil {
		rest.Cuisine = []string{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.restaurants.Insert(ctx, tx, rest); err != nil {
		return nil, err
	}
	rule := &model.DiscountRule{
		RestaurantID: rest.ID,
		TimeStart:    start,
		TimeEnd:      end,
		Discount:     *req.Discount,
		Description:  defaultRuleDescription,
		ValidFrom:    from,
		ValidTo:      to,
		IsActive:     true,
	}
	if err := s.rules.Insert(ctx, tx, rule); err != nil {
		return nil, fmt.Errorf("insert default rule: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit restaurant: %w", err)
	}

	return &model.RestaurantListItem{Restaurant: *rest, Timeslots: []model.DiscountRule{*rule}}, nil
}

// Update applies a partial update.
// Returns ErrInvalidRequest for an update without fields.
func (s *RestaurantService) Update(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error) {
	if req.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidRequest)
	}
	if req.Phone != nil {
		phone := validator.NormalizePhone(*req.Phone)
		req.Phone = &phone
	}
	rest, err := s.restaurants.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, id)
	return rest, nil
}

// Delete removes a restaurant with its rules and bookings. Stored photos are
// removed afterwards; failures there are only logged.
func (s *RestaurantService) Delete(ctx context.Context, id int64) error {
	rest, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.restaurants.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, id)

	if s.photos != nil {
		for _, url := range rest.Photos {
			if err := s.photos.Delete(ctx, url); err != nil {
				log.Warn().Err(err).Int64("restaurant_id", id).Str("photo", url).Msg("failed to remove photo")
			}
		}
	}
	return nil
}

// UpsertTimeslot creates or replaces the restaurant's first discount rule.
func (s *RestaurantService) UpsertTimeslot(ctx context.Context, id int64, req *model.DefaultTimeslotRequest) (*model.DiscountRule, error) {
	if req == nil || req.Discount == nil {
		return nil, ErrInvalidRequest
	}
	start, end, from, to, err := ruleWindow(req.TimeStart, req.TimeEnd, req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}
	maxTables := s.defaultTables
	if req.MaxTables != nil {
		maxTables = *req.MaxTables
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.restaurants.GetForUpdate(ctx, tx, id); err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant for update: %w", err)
	}

	rule, err := s.rules.First(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		rule = &model.DiscountRule{
			RestaurantID: id,
			Description:  defaultRuleDescription,
			IsActive:     true,
		}
	}
	rule.TimeStart = start
	rule.TimeEnd = end
	rule.Discount = *req.Discount
	rule.ValidFrom = from
	rule.ValidTo = to
	rule.MaxTables = maxTables

	if rule.ID == 0 {
		err = s.rules.Insert(ctx, tx, rule)
	} else {
		err = s.rules.Update(ctx, tx, rule)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit timeslot: %w", err)
	}

	invalidate(ctx, s.cache, id)
	return rule, nil
}

// Timeslots returns the annotated slots of a restaurant on date.
func (s *RestaurantService) Timeslots(ctx context.Context, id int64, date model.Date) ([]model.Slot, error) {
	return s.availability.Slots(ctx, id, date)
}

// TimeslotRange returns annotated slots for consecutive days.
func (s *RestaurantService) TimeslotRange(ctx context.Context, id int64, from model.Date, days int) ([]model.DaySlots, error) {
	return s.availability.Range(ctx, id, from, days)
}
