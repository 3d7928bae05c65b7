package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
)

func ruleRecord(id, restaurantID int64, dow *int16) []any {
	return []any{
		id, restaurantID, "18:00:00", "21:00:00", 20, "all menu",
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		4, dow, true, fixedTime,
	}
}

func int16Ptr(v int16) *int16 {
	return &v
}

func TestDiscountRuleRepository_Insert_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	tx := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{values: []any{int64(11), "18:00:00", "21:00:00", fixedTime}}
		},
	}
	rule := &model.DiscountRule{
		RestaurantID: 3,
		TimeStart:    "18:00",
		TimeEnd:      "21:00",
		Discount:     20,
		ValidFrom:    model.NewDate(2025, time.June, 1),
		ValidTo:      model.NewDate(2025, time.June, 30),
		IsActive:     true,
	}

	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})
	err := repo.Insert(context.Background(), tx, rule)

	require.NoError(t, err)
	assert.Equal(t, int64(11), rule.ID)
	assert.Equal(t, "18:00:00", rule.TimeStart)
	assert.Contains(t, capturedSQL, "$2::text::time")
	assert.Equal(t, int64(3), capturedArgs[0])
	assert.Equal(t, "18:00", capturedArgs[1])
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), capturedArgs[5])
}

func TestDiscountRuleRepository_Insert_UnknownRestaurant(t *testing.T) {
	tx := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{err: &pgconn.PgError{Code: "23503"}}
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})
	err := repo.Insert(context.Background(), tx, &model.DiscountRule{RestaurantID: 404})

	assert.True(t, errors.Is(err, service.ErrRestaurantNotFound))
}

func TestDiscountRuleRepository_Insert_OtherPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", Message: "check violation"}
	tx := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{err: pgErr}
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})
	err := repo.Insert(context.Background(), tx, &model.DiscountRule{RestaurantID: 1})

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrRestaurantNotFound))
	assert.Contains(t, err.Error(), "insert discount rule")
}

func TestDiscountRuleRepository_GetByID(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{values: ruleRecord(5, 3, int16Ptr(2))}
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	rule, err := repo.GetByID(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, int64(5), rule.ID)
	assert.Equal(t, "2025-06-01", rule.ValidFrom.String())
	assert.Equal(t, "2025-06-30", rule.ValidTo.String())
	require.NotNil(t, rule.DayOfWeek)
	assert.Equal(t, 2, *rule.DayOfWeek)
}

func TestDiscountRuleRepository_GetByID_NotFound(t *testing.T) {
	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})

	rule, err := repo.GetByID(context.Background(), 5)

	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestDiscountRuleRepository_List(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL = sql
			capturedArgs = args
			return &mockRows{data: [][]any{ruleRecord(1, 3, nil), ruleRecord(2, 3, nil)}}, nil
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	rules, err := repo.List(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Nil(t, rules[0].DayOfWeek)
	assert.Contains(t, capturedSQL, "WHERE restaurant_id = $1")
	assert.Contains(t, capturedSQL, "ORDER BY valid_from DESC")
	assert.Equal(t, []any{int64(3)}, capturedArgs)
}

func TestDiscountRuleRepository_List_AllRestaurants(t *testing.T) {
	var capturedSQL string
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL = sql
			return &mockRows{}, nil
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	rules, err := repo.List(context.Background(), 0)

	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.NotContains(t, capturedSQL, "WHERE")
}

func TestDiscountRuleRepository_List_QueryError(t *testing.T) {
	dbErr := errors.New("timeout")
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, dbErr
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	_, err := repo.List(context.Background(), 0)

	assert.True(t, errors.Is(err, dbErr))
}

func TestDiscountRuleRepository_ListForDates_UsesGivenQuerier(t *testing.T) {
	var capturedArgs []any
	tx := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedArgs = args
			return &mockRows{data: [][]any{ruleRecord(1, 3, nil)}}, nil
		},
	}
	pool := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			t.Fatal("pool must not be used when a querier is given")
			return nil, nil
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(pool)
	from := model.NewDate(2025, time.June, 10)
	rules, err := repo.ListForDates(context.Background(), tx, 3, from, from.AddDays(6))

	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, []any{int64(3), from.Time, from.AddDays(6).Time}, capturedArgs)
}

func TestDiscountRuleRepository_ListForRestaurantsOn_GroupsByRestaurant(t *testing.T) {
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			assert.Contains(t, sql, "ANY($1)")
			assert.Equal(t, []int64{3, 4}, args[0])
			return &mockRows{data: [][]any{ruleRecord(1, 3, nil), ruleRecord(2, 3, nil), ruleRecord(3, 4, nil)}}, nil
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	byRestaurant, err := repo.ListForRestaurantsOn(context.Background(), []int64{3, 4}, model.NewDate(2025, time.June, 10))

	require.NoError(t, err)
	assert.Len(t, byRestaurant[3], 2)
	assert.Len(t, byRestaurant[4], 1)
}

func TestDiscountRuleRepository_ListForRestaurantsOn_NoIDs(t *testing.T) {
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			t.Fatal("no query expected for an empty id list")
			return nil, nil
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	byRestaurant, err := repo.ListForRestaurantsOn(context.Background(), nil, model.NewDate(2025, time.June, 10))

	require.NoError(t, err)
	assert.Empty(t, byRestaurant)
}

func TestDiscountRuleRepository_First(t *testing.T) {
	tx := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			assert.Contains(t, sql, "ORDER BY id LIMIT 1")
			return &mockRow{values: ruleRecord(1, 3, nil)}
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})
	rule, err := repo.First(context.Background(), tx, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.ID)

	rule, err = repo.First(context.Background(), &mockPool{}, 3)
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestDiscountRuleRepository_Update_NotFound(t *testing.T) {
	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})

	err := repo.Update(context.Background(), &mockPool{}, &model.DiscountRule{ID: 9})

	assert.True(t, errors.Is(err, service.ErrDiscountRuleNotFound))
}

func TestDiscountRuleRepository_Update_Success(t *testing.T) {
	var capturedArgs []any
	tx := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedArgs = args
			return &mockRow{values: []any{"10:00:00", "12:00:00", fixedTime}}
		},
	}
	rule := &model.DiscountRule{ID: 9, RestaurantID: 3, TimeStart: "10:00", TimeEnd: "12:00", Discount: 15}

	repo := NewDiscountRuleRepositoryWithPool(&mockPool{})
	err := repo.Update(context.Background(), tx, rule)

	require.NoError(t, err)
	assert.Equal(t, "10:00:00", rule.TimeStart)
	assert.Equal(t, int64(9), capturedArgs[0])
	assert.Equal(t, 15, capturedArgs[4])
}

func TestDiscountRuleRepository_Delete(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{values: []any{int64(3)}}
		},
	}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	restaurantID, err := repo.Delete(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, int64(3), restaurantID)

	_, err = NewDiscountRuleRepositoryWithPool(&mockPool{}).Delete(context.Background(), 9)
	assert.True(t, errors.Is(err, service.ErrDiscountRuleNotFound))
}

func TestDiscountRuleRepository_HasOverlap(t *testing.T) {
	var capturedArgs []any
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedArgs = args
			return &mockRow{values: []any{true}}
		},
	}
	dow := 4
	rule := &model.DiscountRule{ID: 0, RestaurantID: 3, TimeStart: "18:00", TimeEnd: "20:00", DayOfWeek: &dow}

	repo := NewDiscountRuleRepositoryWithPool(mock)
	overlap, err := repo.HasOverlap(context.Background(), rule)

	require.NoError(t, err)
	assert.True(t, overlap)
	assert.Equal(t, int64(3), capturedArgs[0])
	assert.Equal(t, "18:00", capturedArgs[4])
	assert.Equal(t, &dow, capturedArgs[6])
}

func TestNewDiscountRuleRepository_Production(t *testing.T) {
	repo := NewDiscountRuleRepository(nil)
	require.NotNil(t, repo)
}
