package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/pkg/database"
)

// mockRestaurantRepository is a mock implementation of RestaurantRepositoryInterface.
type mockRestaurantRepository struct {
	insertFn          func(ctx context.Context, q database.TxQuerier, rest *model.Restaurant) error
	getByIDFn         func(ctx context.Context, id int64) (*model.Restaurant, error)
	getForUpdateFn    func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Restaurant, error)
	listFn            func(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error)
	searchFn          func(ctx context.Context, s model.RestaurantSearch) ([]model.Restaurant, error)
	updateFn          func(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error)
	deleteFn          func(ctx context.Context, id int64) error
	appendPhotoFn     func(ctx context.Context, id int64, url string) ([]string, error)
	setPhotosFn       func(ctx context.Context, tx database.TxQuerier, id int64, photos []string) error
	countByCategoryFn func(ctx context.Context) (map[string]int, error)
	countActiveFn     func(ctx context.Context) (int, error)
}

func (m *mockRestaurantRepository) Insert(ctx context.Context, q database.TxQuerier, rest *model.Restaurant) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, q, rest)
	}
	rest.ID = 1
	return nil
}

func (m *mockRestaurantRepository) GetByID(ctx context.Context, id int64) (*model.Restaurant, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRestaurantRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Restaurant, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrRestaurantNotFound
}

func (m *mockRestaurantRepository) List(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.Restaurant{}, nil
}

func (m *mockRestaurantRepository) Search(ctx context.Context, s model.RestaurantSearch) ([]model.Restaurant, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, s)
	}
	return []model.Restaurant{}, nil
}

func (m *mockRestaurantRepository) Update(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.Restaurant{ID: id}, nil
}

func (m *mockRestaurantRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRestaurantRepository) AppendPhoto(ctx context.Context, id int64, url string) ([]string, error) {
	if m.appendPhotoFn != nil {
		return m.appendPhotoFn(ctx, id, url)
	}
	return []string{url}, nil
}

func (m *mockRestaurantRepository) SetPhotos(ctx context.Context, tx database.TxQuerier, id int64, photos []string) error {
	if m.setPhotosFn != nil {
		return m.setPhotosFn(ctx, tx, id, photos)
	}
	return nil
}

func (m *mockRestaurantRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	if m.countByCategoryFn != nil {
		return m.countByCategoryFn(ctx)
	}
	return map[string]int{}, nil
}

func (m *mockRestaurantRepository) CountActive(ctx context.Context) (int, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx)
	}
	return 0, nil
}

// mockRuleRepository is a mock implementation of DiscountRuleRepositoryInterface.
type mockRuleRepository struct {
	insertFn               func(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error
	getByIDFn              func(ctx context.Context, id int64) (*model.DiscountRule, error)
	listFn                 func(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error)
	listForDatesFn         func(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date) ([]model.DiscountRule, error)
	listForRestaurantsOnFn func(ctx context.Context, ids []int64, date model.Date) (map[int64][]model.DiscountRule, error)
	firstFn                func(ctx context.Context, q database.TxQuerier, restaurantID int64) (*model.DiscountRule, error)
	updateFn               func(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error
	deleteFn               func(ctx context.Context, id int64) (int64, error)
	hasOverlapFn           func(ctx context.Context, rule *model.DiscountRule) (bool, error)
}

func (m *mockRuleRepository) Insert(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, q, rule)
	}
	rule.ID = 1
	return nil
}

func (m *mockRuleRepository) GetByID(ctx context.Context, id int64) (*model.DiscountRule, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRuleRepository) List(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error) {
	if m.listFn != nil {
		return m.listFn(ctx, restaurantID)
	}
	return []model.DiscountRule{}, nil
}

func (m *mockRuleRepository) ListForDates(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date) ([]model.DiscountRule, error) {
	if m.listForDatesFn != nil {
		return m.listForDatesFn(ctx, q, restaurantID, from, to)
	}
	return []model.DiscountRule{}, nil
}

func (m *mockRuleRepository) ListForRestaurantsOn(ctx context.Context, ids []int64, date model.Date) (map[int64][]model.DiscountRule, error) {
	if m.listForRestaurantsOnFn != nil {
		return m.listForRestaurantsOnFn(ctx, ids, date)
	}
	return map[int64][]model.DiscountRule{}, nil
}

func (m *mockRuleRepository) First(ctx context.Context, q database.TxQuerier, restaurantID int64) (*model.DiscountRule, error) {
	if m.firstFn != nil {
		return m.firstFn(ctx, q, restaurantID)
	}
	return nil, nil
}

func (m *mockRuleRepository) Update(ctx context.Context, q database.TxQuerier, rule *model.DiscountRule) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, q, rule)
	}
	return nil
}

func (m *mockRuleRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return 0, ErrDiscountRuleNotFound
}

func (m *mockRuleRepository) HasOverlap(ctx context.Context, rule *model.DiscountRule) (bool, error) {
	if m.hasOverlapFn != nil {
		return m.hasOverlapFn(ctx, rule)
	}
	return false, nil
}

// mockBookingRepository is a mock implementation of BookingRepositoryInterface.
type mockBookingRepository struct {
	insertFn             func(ctx context.Context, tx database.TxQuerier, b *model.Booking) error
	getByIDFn            func(ctx context.Context, id int64) (*model.Booking, error)
	getByCodeForUpdateFn func(ctx context.Context, tx database.TxQuerier, code string) (*model.Booking, error)
	markCompletedFn      func(ctx context.Context, tx database.TxQuerier, id int64, at time.Time) error
	updateStatusFn       func(ctx context.Context, id int64, status model.BookingStatus, completedAt *time.Time) (*model.Booking, error)
	deleteFn             func(ctx context.Context, id int64) (int64, error)
	listFn               func(ctx context.Context, filter model.BookingFilter, loc *time.Location) ([]model.Booking, error)
	completedFn          func(ctx context.Context, limit int) ([]model.Booking, error)
	activeTimesFn        func(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date, loc *time.Location) (map[string][]int, error)
	statsFn              func(ctx context.Context, dayStart, dayEnd, weekStart time.Time) (*model.DashboardStats, error)
}

func (m *mockBookingRepository) Insert(ctx context.Context, tx database.TxQuerier, b *model.Booking) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, b)
	}
	b.ID = 1
	return nil
}

func (m *mockBookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.Booking, error) {
	if m.getByCodeForUpdateFn != nil {
		return m.getByCodeForUpdateFn(ctx, tx, code)
	}
	return nil, ErrBookingNotFound
}

func (m *mockBookingRepository) MarkCompleted(ctx context.Context, tx database.TxQuerier, id int64, at time.Time) error {
	if m.markCompletedFn != nil {
		return m.markCompletedFn(ctx, tx, id, at)
	}
	return nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus, completedAt *time.Time) (*model.Booking, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, completedAt)
	}
	return &model.Booking{ID: id, Status: status, CompletedAt: completedAt}, nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return 0, ErrBookingNotFound
}

func (m *mockBookingRepository) List(ctx context.Context, filter model.BookingFilter, loc *time.Location) ([]model.Booking, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, loc)
	}
	return []model.Booking{}, nil
}

func (m *mockBookingRepository) Completed(ctx context.Context, limit int) ([]model.Booking, error) {
	if m.completedFn != nil {
		return m.completedFn(ctx, limit)
	}
	return []model.Booking{}, nil
}

func (m *mockBookingRepository) ActiveTimes(ctx context.Context, q database.TxQuerier, restaurantID int64, from, to model.Date, loc *time.Location) (map[string][]int, error) {
	if m.activeTimesFn != nil {
		return m.activeTimesFn(ctx, q, restaurantID, from, to, loc)
	}
	return map[string][]int{}, nil
}

func (m *mockBookingRepository) Stats(ctx context.Context, dayStart, dayEnd, weekStart time.Time) (*model.DashboardStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, dayStart, dayEnd, weekStart)
	}
	return &model.DashboardStats{}, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner that records the
// transactions it hands out.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
	txs     []*mockTx
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	tx := &mockTx{}
	m.txs = append(m.txs, tx)
	return tx, nil
}

// mockSlotCache is a mock implementation of SlotCache.
type mockSlotCache struct {
	getFn         func(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, bool, error)
	setFn         func(ctx context.Context, restaurantID int64, date model.Date, slots []model.Slot) error
	invalidateFn  func(ctx context.Context, restaurantID int64) error
	invalidated   []int64
	setCallsCount int
}

func (m *mockSlotCache) Get(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, restaurantID, date)
	}
	return nil, false, nil
}

func (m *mockSlotCache) Set(ctx context.Context, restaurantID int64, date model.Date, slots []model.Slot) error {
	m.setCallsCount++
	if m.setFn != nil {
		return m.setFn(ctx, restaurantID, date, slots)
	}
	return nil
}

func (m *mockSlotCache) InvalidateRestaurant(ctx context.Context, restaurantID int64) error {
	m.invalidated = append(m.invalidated, restaurantID)
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, restaurantID)
	}
	return nil
}

// mockPhotoStore is a mock implementation of PhotoStore.
type mockPhotoStore struct {
	saveFn   func(ctx context.Context, key string, data []byte) (string, error)
	deleteFn func(ctx context.Context, url string) error
	deleted  []string
}

func (m *mockPhotoStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, key, data)
	}
	return "/photos/" + key, nil
}

func (m *mockPhotoStore) Delete(ctx context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, url)
	}
	return nil
}

// mockProcessor is a mock implementation of ImageProcessor.
type mockProcessor struct {
	processFn func(data []byte) ([]byte, error)
}

func (m *mockProcessor) Process(data []byte) ([]byte, error) {
	if m.processFn != nil {
		return m.processFn(data)
	}
	return data, nil
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

// day is a Tuesday.
var day = model.NewDate(2025, time.June, 10)

// fixedNow is the morning of day in UTC.
var fixedNow = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

func eveningRule(id, restaurantID int64, discount, maxTables int) model.DiscountRule {
	return model.DiscountRule{
		ID:           id,
		RestaurantID: restaurantID,
		TimeStart:    "18:00:00",
		TimeEnd:      "21:00:00",
		Discount:     discount,
		ValidFrom:    day.AddDays(-1),
		ValidTo:      day.AddDays(30),
		MaxTables:    maxTables,
		IsActive:     true,
	}
}
