package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

const bookingColumns = `b.id, b.restaurant_id, COALESCE(r.name, b.restaurant_name), b.guest_name, b.guest_phone,
	b.guest_email, b.booking_datetime, b.party_size, b.special_requests, b.discount_applied, b.status,
	b.confirmation_code, b.completed_at, b.created_at, b.updated_at`

const bookingFrom = ` FROM bookings b LEFT JOIN restaurants r ON r.id = b.restaurant_id`

// BookingRepository provides data access for bookings using pgx.
type BookingRepository struct {
	pool PoolInterface
}

// NewBookingRepository creates a new BookingRepository with the given pool.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// NewBookingRepositoryWithPool creates a new BookingRepository with a custom pool interface.
// This is primarily used for testing.
func NewBookingRepositoryWithPool(pool PoolInterface) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row scanner) (*model.Booking, error) {
	var b model.Booking
	var status string
	err := row.Scan(
		&b.ID,
		&b.RestaurantID,
		&b.RestaurantName,
		&b.GuestName,
		&b.GuestPhone,
		&b.GuestEmail,
		&b.BookingDatetime,
		&b.PartySize,
		&b.SpecialRequests,
		&b.DiscountApplied,
		&status,
		&b.ConfirmationCode,
		&b.CompletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Insert inserts a booking inside the booking transaction and fills its
// generated fields.
// Returns service.ErrCodeConflict if the confirmation code is taken and
// service.ErrRestaurantNotFound if the restaurant doesn't exist.
func (r *BookingRepository) Insert(ctx context.Context, tx database.TxQuerier, b *model.Booking) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO bookings
		   (restaurant_id, restaurant_name, guest_name, guest_phone, guest_email, booking_datetime,
		    party_size, special_requests, discount_applied, status, confirmation_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		b.RestaurantID, b.RestaurantName, b.GuestName, b.GuestPhone, b.GuestEmail, b.BookingDatetime,
		b.PartySize, b.SpecialRequests, b.DiscountApplied, string(b.Status), b.ConfirmationCode,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return service.ErrCodeConflict
		case pgForeignKeyViolation:
			return service.ErrRestaurantNotFound
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by id.
// Returns nil, nil if the booking is not found (service layer handles this).
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+bookingFrom+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

// GetByCodeForUpdate retrieves a booking by confirmation code with a row lock.
// Returns service.ErrBookingNotFound if no booking has the code.
func (r *BookingRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+bookingFrom+` WHERE b.confirmation_code = $1 FOR UPDATE OF b`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking by code for update: %w", err)
	}
	return b, nil
}

// MarkCompleted sets status completed and completed_at.
// Must be called within a transaction after locking the row.
func (r *BookingRepository) MarkCompleted(ctx context.Context, tx database.TxQuerier, id int64, at time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE bookings SET status = 'completed', completed_at = $2, updated_at = NOW() WHERE id = $1`,
		id, at)
	if err != nil {
		return fmt.Errorf("mark booking %d completed: %w", id, err)
	}
	return nil
}

// UpdateStatus changes a booking's status. A non-nil completedAt is stored
// as completed_at; otherwise the existing value is kept.
// Returns service.ErrBookingNotFound if the booking doesn't exist.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus, completedAt *time.Time) (*model.Booking, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = $2, completed_at = COALESCE($3, completed_at), updated_at = NOW()
		 WHERE id = $1`,
		id, string(status), completedAt)
	if err != nil {
		return nil, fmt.Errorf("update booking %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, service.ErrBookingNotFound
	}

	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, service.ErrBookingNotFound
	}
	return b, nil
}

// Delete removes a booking and returns its restaurant id.
// Returns service.ErrBookingNotFound if the booking doesn't exist.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var restaurantID int64
	err := r.pool.QueryRow(ctx,
		`DELETE FROM bookings WHERE id = $1 RETURNING restaurant_id`, id).Scan(&restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrBookingNotFound
		}
		return 0, fmt.Errorf("delete booking %d: %w", id, err)
	}
	return restaurantID, nil
}

// List returns bookings matching filter, newest first. A date filter selects
// bookings whose datetime falls on that calendar day in loc.
func (r *BookingRepository) List(ctx context.Context, filter model.BookingFilter, loc *time.Location) ([]model.Booking, error) {
	conds := []string{}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Phone != "" {
		add(`b.guest_phone = $%d`, filter.Phone)
	}
	if filter.RestaurantID > 0 {
		add(`b.restaurant_id = $%d`, filter.RestaurantID)
	}
	if filter.Status != "" {
		add(`b.status = $%d`, string(filter.Status))
	}
	if filter.Date != nil {
		add(`b.booking_datetime >= $%d`, filter.Date.At(0, loc))
		add(`b.booking_datetime < $%d`, filter.Date.AddDays(1).At(0, loc))
	}

	query := `SELECT ` + bookingColumns + bookingFrom
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY b.created_at DESC, b.id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Completed returns checked-in bookings, most recent check-in first.
func (r *BookingRepository) Completed(ctx context.Context, limit int) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+bookingFrom+`
		 WHERE b.status = 'completed'
		 ORDER BY b.completed_at DESC NULLS LAST, b.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list completed bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("list completed bookings: %w", err)
	}
	return bookings, nil
}

// ActiveTimes returns, per calendar date in loc ("YYYY-MM-DD"), the
// minute-of-day of every confirmed or completed booking of a restaurant
// between from and to inclusive. It runs on q so booking creation can count
// inside its transaction.
func (r *BookingRepository) ActiveTimes(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date, loc *time.Location) (map[string][]int, error) {
	rows, err := q.Query(ctx,
		`SELECT booking_datetime FROM bookings
		 WHERE restaurant_id = $1 AND status IN ('confirmed', 'completed')
		   AND booking_datetime >= $2 AND booking_datetime < $3`,
		restaurantID, from.At(0, loc), to.AddDays(1).At(0, loc))
	if err != nil {
		return nil, fmt.Errorf("list booking times for restaurant %d: %w", restaurantID, err)
	}
	defer rows.Close()

	times := make(map[string][]int)
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan booking time: %w", err)
		}
		local := at.In(loc)
		key := model.DateOf(local).String()
		times[key] = append(times[key], local.Hour()*60+local.Minute())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking times: %w", err)
	}
	return times, nil
}

// Stats counts bookings on [dayStart, dayEnd), the guests they bring, and
// bookings created since weekStart.
func (r *BookingRepository) Stats(ctx context.Context, dayStart, dayEnd, weekStart time.Time) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	err := r.pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE booking_datetime >= $1 AND booking_datetime < $2),
		   COALESCE(SUM(party_size) FILTER (WHERE booking_datetime >= $1 AND booking_datetime < $2), 0),
		   COUNT(*) FILTER (WHERE created_at >= $3)
		 FROM bookings`,
		dayStart, dayEnd, weekStart,
	).Scan(&stats.TodayCount, &stats.TodayGuests, &stats.WeekCount)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	return &stats, nil
}
