package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

// RestaurantRepositoryInterface defines the interface for restaurant data access.
type RestaurantRepositoryInterface interface {
	Insert(ctx context.Context, q database.TxQuerier, rest *model.Restaurant) error
	GetByID(ctx context.Context, id int64) (*model.Restaurant, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Restaurant, error)
	List(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error)
	Search(ctx context.Context, s model.RestaurantSearch) ([]model.Restaurant, error)
	Update(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error)
	Delete(ctx context.Context, id int64) error
	AppendPhoto(ctx context.Context, id int64, url string) ([]string, error)
	SetPhotos(ctx context.Context, tx database.TxQuerier, id int64, photos []string) error
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountActive(ctx context.Context) (int, error)
}

// DiscountRuleRepositoryInterface defines the interface for discount rule data access.
type DiscountRuleRepositoryInterface interface {
	Insert(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error
	GetByID(ctx context.Context, id int64) (*model.DiscountRule, error)
	List(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error)
	ListForDates(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date) ([]model.DiscountRule, error)
	ListForRestaurantsOn(ctx context.Context, restaurantIDs []int64, date model.Date) (map[int64][]model.DiscountRule, error)
	First(ctx context.Context, q database.TxQuerier, restaurantID int64) (*model.DiscountRule, error)
	Update(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error
	Delete(ctx context.Context, id int64) (int64, error)
	HasOverlap(ctx context.Context, rule *model.DiscountRule) (bool, error)
}

// BookingRepositoryInterface defines the interface for booking data access.
type BookingRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, b *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Booking, error)
	MarkCompleted(ctx context.Context, tx database.TxQuerier, id int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus, completedAt *time.Time) (*model.Booking, error)
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter model.BookingFilter, loc *time.Location) ([]model.Booking, error)
	Completed(ctx context.Context, limit int) ([]model.Booking, error)
	ActiveTimes(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date, loc *time.Location) (map[string][]int, error)
	Stats(ctx context.Context, dayStart, dayEnd, weekStart time.Time) (*model.DashboardStats, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SlotCache stores generated slots per restaurant and date.
type SlotCache interface {
	Get(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, bool, error)
	Set(ctx context.Context, restaurantID int64, date model.Date, slots []model.Slot) error
	InvalidateRestaurant(ctx context.Context, restaurantID int64) error
}

// PhotoStore persists processed restaurant photos.
type PhotoStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// invalidate drops a restaurant's cached slots. Failures are logged; the
// entries expire on their own.
func invalidate(ctx context.Context, cache SlotCache, restaurantID int64) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateRestaurant(ctx, restaurantID); err != nil {
		log.Warn().Err(err).Int64("restaurant_id", restaurantID).Msg("failed to invalidate slot cache")
	}
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
