package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

const restaurantColumns = `id, name, category, rating::float8, avg_check, address, phone,
	cuisine, description, photos, is_active, created_at, updated_at`

// RestaurantRepository provides data access for restaurants using pgx.
type RestaurantRepository struct {
	pool PoolInterface
}

// NewRestaurantRepository creates a new RestaurantRepository with the given pool.
func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

// NewRestaurantRepositoryWithPool creates a new RestaurantRepository with a custom pool interface.
// This is primarily used for testing.
func NewRestaurantRepositoryWithPool(pool PoolInterface) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func scanRestaurant(row scanner) (*model.Restaurant, error) {
	var r model.Restaurant
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Category,
		&r.Rating,
		&r.AvgCheck,
		&r.Address,
		&r.Phone,
		&r.Cuisine,
		&r.Description,
		&r.Photos,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Cuisine = nonNil(r.Cuisine)
	r.Photos = nonNil(r.Photos)
	return &r, nil
}

func collectRestaurants(rows pgx.Rows) ([]model.Restaurant, error) {
	defer rows.Close()

	restaurants := make([]model.Restaurant, 0)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// Insert inserts a new restaurant and fills its generated fields.
// It runs on q so it can share a transaction with the default discount rule.
func (r *RestaurantRepository) Insert(ctx context.Context, q database.TxQuerier, rest *model.Restaurant) error {
	err := q.QueryRow(ctx,
		`INSERT INTO restaurants (name, category, rating, avg_check, address, phone, cuisine, description, photos, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		rest.Name, rest.Category, rest.Rating, rest.AvgCheck, rest.Address, rest.Phone,
		nonNil(rest.Cuisine), rest.Description, nonNil(rest.Photos), rest.IsActive,
	).Scan(&rest.ID, &rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

// GetByID retrieves a restaurant by id.
// Returns nil, nil if the restaurant is not found (service layer handles this).
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	rest, err := scanRestaurant(r.pool.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return rest, nil
}

// GetForUpdate retrieves a restaurant with a row lock (SELECT FOR UPDATE).
// The lock serializes bookings and photo edits for the restaurant until the
// transaction completes.
// Returns service.ErrRestaurantNotFound if the restaurant doesn't exist.
func (r *RestaurantRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Restaurant, error) {
	rest, err := scanRestaurant(tx.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant %d for update: %w", id, err)
	}
	return rest, nil
}

// List returns restaurants ordered by newest first, optionally filtered by category.
func (r *RestaurantRepository) List(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants`
	args := []any{}
	if filter.Category != "" && filter.Category != "all" {
		args = append(args, filter.Category)
		query += ` WHERE category = $1`
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	restaurants, err := collectRestaurants(rows)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

// Search returns active restaurants matching all given criteria.
// DiscountMin matches restaurants with at least one active rule at or above it.
func (r *RestaurantRepository) Search(ctx context.Context, s model.RestaurantSearch) ([]model.Restaurant, error) {
	conds := []string{"is_active"}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if s.Query != "" {
		add(`(name ILIKE $%[1]d OR description ILIKE $%[1]d)`, "%"+s.Query+"%")
	}
	if s.Cuisine != "" {
		add(`EXISTS (SELECT 1 FROM unnest(cuisine) AS c WHERE c ILIKE $%d)`, s.Cuisine)
	}
	if s.Category != "" && s.Category != "all" {
		add(`category = $%d`, s.Category)
	}
	if s.DiscountMin != nil {
		add(`EXISTS (SELECT 1 FROM discount_rules d WHERE d.restaurant_id = restaurants.id AND d.is_active AND d.discount >= $%d)`, *s.DiscountMin)
	}
	if s.AvgCheckMin != nil {
		add(`avg_check >= $%d`, *s.AvgCheckMin)
	}
	if s.AvgCheckMax != nil {
		add(`avg_check <= $%d`, *s.AvgCheckMax)
	}
	args = append(args, s.Limit)

	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(` ORDER BY rating DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	restaurants, err := collectRestaurants(rows)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return restaurants, nil
}

// Update applies the non-nil fields of req and returns the updated restaurant.
// Returns service.ErrRestaurantNotFound if the restaurant doesn't exist.
func (r *RestaurantRepository) Update(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Category != nil {
		set("category", *req.Category)
	}
	if req.Rating != nil {
		set("rating", *req.Rating)
	}
	if req.AvgCheck != nil {
		set("avg_check", *req.AvgCheck)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Cuisine != nil {
		set("cuisine", nonNil(*req.Cuisine))
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	query := `UPDATE restaurants SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + restaurantColumns
	rest, err := scanRestaurant(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("update restaurant %d: %w", id, err)
	}
	return rest, nil
}

// Delete removes a restaurant. Discount rules and bookings cascade.
// Returns service.ErrRestaurantNotFound if the restaurant doesn't exist.
func (r *RestaurantRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete restaurant %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrRestaurantNotFound
	}
	return nil
}

// AppendPhoto atomically appends a photo URL and returns the new photo list.
// Returns service.ErrRestaurantNotFound if the restaurant doesn't exist.
func (r *RestaurantRepository) AppendPhoto(ctx context.Context, id int64, url string) ([]string, error) {
	var photos []string
	err := r.pool.QueryRow(ctx,
		`UPDATE restaurants SET photos = array_append(photos, $2), updated_at = NOW()
		 WHERE id = $1 RETURNING photos`, id, url).Scan(&photos)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("append photo to restaurant %d: %w", id, err)
	}
	return nonNil(photos), nil
}

// SetPhotos replaces the photo list. Must be called within a transaction
// after locking the row with GetForUpdate.
func (r *RestaurantRepository) SetPhotos(ctx context.Context, tx database.TxQuerier, id int64, photos []string) error {
	_, err := tx.Exec(ctx,
		`UPDATE restaurants SET photos = $2, updated_at = NOW() WHERE id = $1`, id, nonNil(photos))
	if err != nil {
		return fmt.Errorf("set photos for restaurant %d: %w", id, err)
	}
	return nil
}

// CountByCategory returns the number of active restaurants per category.
func (r *RestaurantRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM restaurants WHERE is_active GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count restaurants by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// CountActive returns the number of active restaurants.
func (r *RestaurantRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM restaurants WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active restaurants: %w", err)
	}
	return n, nil
}
