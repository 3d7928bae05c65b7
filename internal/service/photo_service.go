package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// ImageProcessor normalizes an uploaded image into the stored format.
type ImageProcessor interface {
	Process(data []byte) ([]byte, error)
}

// PhotoService manages restaurant photos.
type PhotoService struct {
	pool        TxBeginner
	restaurants RestaurantRepositoryInterface
	store       PhotoStore
	processor   ImageProcessor
	maxBytes    int
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(pool TxBeginner, restaurants RestaurantRepositoryInterface, store PhotoStore, processor ImageProcessor, maxBytes int) *PhotoService {
	return &PhotoService{
		pool:        pool,
		restaurants: restaurants,
		store:       store,
		processor:   processor,
		maxBytes:    maxBytes,
	}
}

// Upload converts an image to JPEG, stores it as <restaurant_id>/<uuid>.jpg
// and appends its URL to the restaurant.
// Returns:
//   - ErrInvalidImage for a non-image content type or undecodable data
//   - ErrImageTooLarge above the size limit
//   - ErrRestaurantNotFound if the restaurant doesn't exist
func (s *PhotoService) Upload(ctx context.Context, restaurantID int64, contentType string, data []byte) (*model.PhotoUploadResult, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImage
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return nil, fmt.Errorf("%w: max %d MB", ErrImageTooLarge, s.maxBytes/(1024*1024))
	}

	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if rest == nil {
		return nil, ErrRestaurantNotFound
	}

	jpeg, err := s.processor.Process(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	key := fmt.Sprintf("%d/%s.jpg", restaurantID, uuid.NewString())
	url, err := s.store.Save(ctx, key, jpeg)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	photos, err := s.restaurants.AppendPhoto(ctx, restaurantID, url)
	if err != nil {
		s.discard(ctx, restaurantID, url)
		return nil, err
	}
	return &model.PhotoUploadResult{PhotoURL: url, Photos: photos, TotalPhotos: len(photos)}, nil
}

// Delete removes the photo at index and returns the remaining list.
// Returns ErrPhotoIndex when index is out of range.
func (s *PhotoService) Delete(ctx context.Context, restaurantID int64, index int) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rest, err := s.restaurants.GetForUpdate(ctx, tx, restaurantID)
	if err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant for update: %w", err)
	}
	if index < 0 || index >= len(rest.Photos) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPhotoIndex, index, len(rest.Photos))
	}

	removed := rest.Photos[index]
	remaining := make([]string, 0, len(rest.Photos)-1)
	remaining = append(remaining, rest.Photos[:index]...)
	remaining = append(remaining, rest.Photos[index+1:]...)

	if err := s.restaurants.SetPhotos(ctx, tx, restaurantID, remaining); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit photos: %w", err)
	}

	s.discard(ctx, restaurantID, removed)
	return remaining, nil
}

// discard removes a stored photo, logging failures.
func (s *PhotoService) discard(ctx context.Context, restaurantID int64, url string) {
	if err := s.store.Delete(ctx, url); err != nil {
		log.Warn().Err(err).Int64("restaurant_id", restaurantID).Str("photo", url).Msg("failed to remove stored photo")
	}
}
