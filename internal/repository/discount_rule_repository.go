package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

const ruleColumns = `id, restaurant_id, time_start::text, time_end::text, discount, description,
	valid_from, valid_to, max_tables, day_of_week, is_active, created_at`

// DiscountRuleRepository provides data access for discount rules using pgx.
type DiscountRuleRepository struct {
	pool PoolInterface
}

// NewDiscountRuleRepository creates a new DiscountRuleRepository with the given pool.
func NewDiscountRuleRepository(pool *pgxpool.Pool) *DiscountRuleRepository {
	return &DiscountRuleRepository{pool: pool}
}

// NewDiscountRuleRepositoryWithPool creates a new DiscountRuleRepository with a custom pool interface.
// This is primarily used for testing.
func NewDiscountRuleRepositoryWithPool(pool PoolInterface) *DiscountRuleRepository {
	return &DiscountRuleRepository{pool: pool}
}

func scanRule(row scanner) (*model.DiscountRule, error) {
	var rule model.DiscountRule
	var dow *int16
	err := row.Scan(
		&rule.ID,
		&rule.RestaurantID,
		&rule.TimeStart,
		&rule.TimeEnd,
		&rule.Discount,
		&rule.Description,
		&rule.ValidFrom.Time,
		&rule.ValidTo.Time,
		&rule.MaxTables,
		&dow,
		&rule.IsActive,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dow != nil {
		d := int(*dow)
		rule.DayOfWeek = &d
	}
	return &rule, nil
}

func collectRules(rows pgx.Rows) ([]model.DiscountRule, error) {
	defer rows.Close()

	rules := make([]model.DiscountRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func ruleErr(op string, err error) error {
	if pgCode(err) == pgForeignKeyViolation {
		return service.ErrRestaurantNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Insert inserts a discount rule and fills its generated fields.
// Returns service.ErrRestaurantNotFound if the restaurant doesn't exist.
func (r *DiscountRuleRepository) Insert(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error {
	err := q.QueryRow(ctx,
		`INSERT INTO discount_rules
		   (restaurant_id, time_start, time_end, discount, description, valid_from, valid_to, max_tables, day_of_week, is_active)
		 VALUES ($1, $2::text::time, $3::text::time, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, time_start::text, time_end::text, created_at`,
		rule.RestaurantID, rule.TimeStart, rule.TimeEnd, rule.Discount, rule.Description,
		rule.ValidFrom.Time, rule.ValidTo.Time, rule.MaxTables, rule.DayOfWeek, rule.IsActive,
	).Scan(&rule.ID, &rule.TimeStart, &rule.TimeEnd, &rule.CreatedAt)
	if err != nil {
		return ruleErr("insert discount rule", err)
	}
	return nil
}

// GetByID retrieves a discount rule by id.
// Returns nil, nil if the rule is not found (service layer handles this).
func (r *DiscountRuleRepository) GetByID(ctx context.Context, id int64) (*model.DiscountRule, error) {
	rule, err := scanRule(r.pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM discount_rules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get discount rule %d: %w", id, err)
	}
	return rule, nil
}

// List returns discount rules ordered by valid_from descending.
// A zero restaurantID lists rules of every restaurant.
func (r *DiscountRuleRepository) List(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM discount_rules`
	args := []any{}
	if restaurantID > 0 {
		query += ` WHERE restaurant_id = $1`
		args = append(args, restaurantID)
	}
	query += ` ORDER BY valid_from DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list discount rules: %w", err)
	}
	rules, err := collectRules(rows)
	if err != nil {
		return nil, fmt.Errorf("list discount rules: %w", err)
	}
	return rules, nil
}

// ListForDates returns the active rules of a restaurant whose validity
// intersects [from, to]. Weekday filtering is left to the slot generator.
// It runs on q so booking creation can read inside its transaction.
func (r *DiscountRuleRepository) ListForDates(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date) ([]model.DiscountRule, error) {
	rows, err := q.Query(ctx,
		`SELECT `+ruleColumns+` FROM discount_rules
		 WHERE restaurant_id = $1 AND is_active AND valid_from <= $3 AND valid_to >= $2
		 ORDER BY id`,
		restaurantID, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("list discount rules for restaurant %d: %w", restaurantID, err)
	}
	rules, err := collectRules(rows)
	if err != nil {
		return nil, fmt.Errorf("list discount rules for restaurant %d: %w", restaurantID, err)
	}
	return rules, nil
}

// ListForRestaurantsOn returns the active rules valid on date for each of the
// given restaurants in a single query.
func (r *DiscountRuleRepository) ListForRestaurantsOn(ctx context.Context, restaurantIDs []int64, date model.Date) (map[int64][]model.DiscountRule, error) {
	out := make(map[int64][]model.DiscountRule, len(restaurantIDs))
	if len(restaurantIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM discount_rules
		 WHERE restaurant_id = ANY($1) AND is_active AND valid_from <= $2 AND valid_to >= $2
		 ORDER BY restaurant_id, time_start, id`,
		restaurantIDs, date.Time)
	if err != nil {
		return nil, fmt.Errorf("list discount rules for restaurants: %w", err)
	}
	rules, err := collectRules(rows)
	if err != nil {
		return nil, fmt.Errorf("list discount rules for restaurants: %w", err)
	}
	for _, rule := range rules {
		out[rule.RestaurantID] = append(out[rule.RestaurantID], rule)
	}
	return out, nil
}

// First returns the oldest rule of a restaurant, or nil, nil when it has none.
func (r *DiscountRuleRepository) First(ctx context.Context, q database.TxQuerier, restaurantID int64) (*model.DiscountRule, error) {
	rule, err := scanRule(q.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM discount_rules WHERE restaurant_id = $1 ORDER BY id LIMIT 1`,
		restaurantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get first discount rule for restaurant %d: %w", restaurantID, err)
	}
	return rule, nil
}

// Update replaces every mutable field of a rule.
// Returns service.ErrDiscountRuleNotFound if the rule doesn't exist.
func (r *DiscountRuleRepository) Update(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error {
	err := q.QueryRow(ctx,
		`UPDATE discount_rules SET
		   restaurant_id = $2, time_start = $3::text::time, time_end = $4::text::time, discount = $5,
		   description = $6, valid_from = $7, valid_to = $8, max_tables = $9, day_of_week = $10, is_active = $11
		 WHERE id = $1
		 RETURNING time_start::text, time_end::text, created_at`,
		rule.ID, rule.RestaurantID, rule.TimeStart, rule.TimeEnd, rule.Discount, rule.Description,
		rule.ValidFrom.Time, rule.ValidTo.Time, rule.MaxTables, rule.DayOfWeek, rule.IsActive,
	).Scan(&rule.TimeStart, &rule.TimeEnd, &rule.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrDiscountRuleNotFound
		}
		return ruleErr(fmt.Sprintf("update discount rule %d", rule.ID), err)
	}
	return nil
}

// Delete removes a rule and returns the restaurant it belonged to.
// Returns service.ErrDiscountRuleNotFound if the rule doesn't exist.
func (r *DiscountRuleRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var restaurantID int64
	err := r.pool.QueryRow(ctx,
		`DELETE FROM discount_rules WHERE id = $1 RETURNING restaurant_id`, id).Scan(&restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrDiscountRuleNotFound
		}
		return 0, fmt.Errorf("delete discount rule %d: %w", id, err)
	}
	return restaurantID, nil
}

// HasOverlap reports whether another active rule of the same restaurant
// overlaps rule in both date range and time window. Weekdays only separate
// rules when both are set.
func (r *DiscountRuleRepository) HasOverlap(ctx context.Context, rule *model.DiscountRule) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM discount_rules
		   WHERE restaurant_id = $1 AND id <> $2 AND is_active
		     AND valid_from <= $4 AND valid_to >= $3
		     AND time_start < $6::text::time AND time_end > $5::text::time
		     AND (day_of_week IS NULL OR $7::smallint IS NULL OR day_of_week = $7::smallint)
		 )`,
		rule.RestaurantID, rule.ID, rule.ValidFrom.Time, rule.ValidTo.Time,
		rule.TimeStart, rule.TimeEnd, rule.DayOfWeek,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check discount rule overlap: %w", err)
	}
	return exists, nil
}
