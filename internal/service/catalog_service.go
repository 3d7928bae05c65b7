package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/catalog"
	"github.com/fairyhunter13/restoboost/internal/model"
)

const categoryCountTimeout = 5 * time.Second

// CategoryService lists restaurant categories with their sizes.
type CategoryService struct {
	restaurants RestaurantRepositoryInterface
	categories  []model.Category
	timeout     time.Duration
}

// NewCategoryService creates a new CategoryService over a category catalog.
func NewCategoryService(restaurants RestaurantRepositoryInterface, categories []model.Category) *CategoryService {
	return &CategoryService{
		restaurants: restaurants,
		categories:  categories,
		timeout:     categoryCountTimeout,
	}
}

// List returns the catalog with active restaurant counts. When counting
// fails or times out the catalog is returned with zero counts.
func (s *CategoryService) List(ctx context.Context) []model.Category {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts, err := s.restaurants.CountByCategory(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("category counts unavailable")
		counts = nil
	}
	return catalog.WithCounts(s.categories, counts)
}

// DashboardService summarizes activity for staff.
type DashboardService struct {
	restaurants  RestaurantRepositoryInterface
	bookings     BookingRepositoryInterface
	availability *AvailabilityService
}

const dashboardRecentRestaurants = 10

// NewDashboardService creates a new DashboardService.
func NewDashboardService(restaurants RestaurantRepositoryInterface, bookings BookingRepositoryInterface, availability *AvailabilityService) *DashboardService {
	return &DashboardService{
		restaurants:  restaurants,
		bookings:     bookings,
		availability: availability,
	}
}

// Stats returns today's bookings and guests, bookings created in the last
// seven days, active restaurants and the most recently added restaurants.
func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	loc := s.availability.Location()
	today := s.availability.Today()
	now := s.availability.now()

	stats, err := s.bookings.Stats(ctx, today.At(0, loc), today.AddDays(1).At(0, loc), now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	active, err := s.restaurants.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.restaurants.List(ctx, model.RestaurantFilter{Limit: dashboardRecentRestaurants})
	if err != nil {
		return nil, err
	}

	stats.ActiveRestaurants = active
	stats.Restaurants = recent
	if stats.Restaurants == nil {
		stats.Restaurants = []model.Restaurant{}
	}
	return stats, nil
}
