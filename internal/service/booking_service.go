package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/metrics"
	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/timeslot"
	"github.com/fairyhunter13/restoboost/internal/validator"
)

const (
	codeLength       = 8
	maxCodeAttempts  = 5
	completedMaxList = 500
)

// BookingService provides business logic for reservations and QR check-in.
type BookingService struct {
	pool         TxBeginner
	restaurants  RestaurantRepositoryInterface
	bookings     BookingRepositoryInterface
	availability *AvailabilityService
	cache        SlotCache
	now          func() time.Time
	newCode      func() string
}

// NewBookingService creates a new BookingService. cache may be nil.
func NewBookingService(
	pool TxBeginner,
	restaurants RestaurantRepositoryInterface,
	bookings BookingRepositoryInterface,
	availability *AvailabilityService,
	cache SlotCache,
) *BookingService {
	return &BookingService{
		pool:         pool,
		restaurants:  restaurants,
		bookings:     bookings,
		availability: availability,
		cache:        cache,
		now:          time.Now,
		newCode:      newConfirmationCode,
	}
}

// newConfirmationCode returns 8 upper-case hex characters taken from a random UUID.
func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:codeLength]
}

// Create books a table. The restaurant row is locked for the duration of the
// transaction so concurrent submissions for the same restaurant see each
// other's bookings when checking capacity.
// Returns:
//   - ErrInvalidRequest for malformed date, time or party size
//   - ErrBookingInPast if the requested time has already passed
//   - ErrRestaurantNotFound if the restaurant doesn't exist
//   - ErrSlotFull if the covering slot has no free tables
func (s *BookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingConfirmation, error) {
	if req == nil || req.PartySize == nil {
		return nil, ErrInvalidRequest
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	minute, err := timeslot.ParseClock(req.Time)
	if err != nil || minute >= timeslot.MinutesPerDay {
		return nil, fmt.Errorf("%w: invalid time %q", ErrInvalidRequest, req.Time)
	}

	at := date.At(minute, s.availability.Location())
	if at.Before(s.now()) {
		metrics.IncBookingRejected("past")
		return nil, ErrBookingInPast
	}

	b := &model.Booking{
		RestaurantID:    req.RestaurantID,
		GuestName:       strings.TrimSpace(req.GuestName),
		GuestPhone:      validator.NormalizePhone(req.Phone),
		BookingDatetime: at,
		PartySize:       *req.PartySize,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Status:          model.StatusConfirmed,
	}
	if email := strings.TrimSpace(req.GuestEmail); email != "" {
		b.GuestEmail = &email
	}

	for attempt := 1; ; attempt++ {
		b.ConfirmationCode = s.newCode()
		err = s.insert(ctx, b, date, minute)
		if !errors.Is(err, ErrCodeConflict) || attempt == maxCodeAttempts {
			break
		}
		log.Warn().Int("attempt", attempt).Msg("confirmation code collision, retrying")
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotFull):
			metrics.IncBookingRejected("full")
		case errors.Is(err, ErrRestaurantNotFound):
			metrics.IncBookingRejected("not_found")
		}
		return nil, err
	}

	invalidate(ctx, s.cache, b.RestaurantID)
	metrics.IncBookingCreated()

	return &model.BookingConfirmation{
		ID:               b.ID,
		ConfirmationCode: b.ConfirmationCode,
		RestaurantName:   b.RestaurantName,
		GuestName:        b.GuestName,
		BookingDatetime:  b.BookingDatetime,
		PartySize:        b.PartySize,
		Phone:            b.GuestPhone,
		GuestEmail:       b.GuestEmail,
		Discount:         b.DiscountApplied,
	}, nil
}

// insert runs one booking attempt in its own transaction. A unique violation
// aborts the transaction, so code retries need a fresh one.
func (s *BookingService) insert(ctx context.Context, b *model.Booking, date model.Date, minute int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the restaurant row (SELECT FOR UPDATE)
	rest, err := s.restaurants.GetForUpdate(ctx, tx, b.RestaurantID)
	if err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return ErrRestaurantNotFound
		}
		return fmt.Errorf("get restaurant for update: %w", err)
	}

	// 2. Check the covering slot
	slots, err := s.availability.slotsOn(ctx, tx, rest.ID, date)
	if err != nil {
		return err
	}
	b.DiscountApplied = 0
	if slot, ok := s.availability.generator.Covering(slots, minute); ok {
		if !slot.Available {
			return ErrSlotFull
		}
		b.DiscountApplied = slot.Discount
	}
	b.RestaurantName = rest.Name

	// 3. Insert (UNIQUE constraint catches code collisions)
	if err := s.bookings.Insert(ctx, tx, b); err != nil {
		if errors.Is(err, ErrCodeConflict) || errors.Is(err, ErrRestaurantNotFound) {
			return err
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// Verify checks in a guest by confirmation code and marks the booking completed.
// Returns:
//   - ErrEmptyCode for a blank code
//   - ErrBookingNotFound if no booking has the code
//   - ErrBookingAlreadyUsed if the booking was already checked in
//   - ErrBookingNotConfirmed for cancelled or no-show bookings
func (s *BookingService) Verify(ctx context.Context, code string) (*model.VerifyResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrEmptyCode
	}

	result, err := s.verify(ctx, code)
	switch {
	case err == nil:
		metrics.IncQRVerification("ok")
	case errors.Is(err, ErrBookingNotFound):
		metrics.IncQRVerification("not_found")
	case errors.Is(err, ErrBookingAlreadyUsed):
		metrics.IncQRVerification("already_used")
	case errors.Is(err, ErrBookingNotConfirmed):
		metrics.IncQRVerification("wrong_status")
	default:
		metrics.IncQRVerification("error")
	}
	return result, err
}

func (s *BookingService) verify(ctx context.Context, code string) (*model.VerifyResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b, err := s.bookings.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking for update: %w", err)
	}

	switch b.Status {
	case model.StatusConfirmed:
	case model.StatusCompleted:
		usedAt := "unknown time"
		if b.CompletedAt != nil {
			usedAt = b.CompletedAt.Format(time.RFC3339)
		}
		return nil, fmt.Errorf("%w at %s", ErrBookingAlreadyUsed, usedAt)
	default:
		return nil, fmt.Errorf("%w: %s", ErrBookingNotConfirmed, b.Status)
	}

	now := s.now()
	if err := s.bookings.MarkCompleted(ctx, tx, b.ID, now); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit verification: %w", err)
	}

	b.Status = model.StatusCompleted
	b.CompletedAt = &now
	return &model.VerifyResult{Booking: *b, Discount: b.DiscountApplied}, nil
}

// Get retrieves a booking by id.
// Returns ErrBookingNotFound if the booking doesn't exist.
func (s *BookingService) Get(ctx context.Context, id int64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// List returns bookings matching filter.
func (s *BookingService) List(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, filter.Status)
	}
	if filter.Phone != "" {
		filter.Phone = validator.NormalizePhone(filter.Phone)
	}
	filter.Limit = clampLimit(filter.Limit)
	return s.bookings.List(ctx, filter, s.availability.Location())
}

// Completed returns checked-in bookings, most recent first.
func (s *BookingService) Completed(ctx context.Context, limit int) ([]model.Booking, error) {
	if limit <= 0 || limit > completedMaxList {
		limit = completedMaxList
	}
	return s.bookings.Completed(ctx, limit)
}

// UpdateStatus changes a booking's status. Moving to completed stamps completed_at.
func (s *BookingService) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) (*model.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}
	var completedAt *time.Time
	if status == model.StatusCompleted {
		now := s.now()
		completedAt = &now
	}

	b, err := s.bookings.UpdateStatus(ctx, id, status, completedAt)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, b.RestaurantID)
	return b, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id int64) error {
	restaurantID, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return err
	}
	invalidate(ctx, s.cache, restaurantID)
	return nil
}
