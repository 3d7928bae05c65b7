package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/validator"
)

type mockRestaurantService struct {
	listFn           func(ctx context.Context, filter model.RestaurantFilter) ([]model.RestaurantListItem, error)
	searchFn         func(ctx context.Context, search model.RestaurantSearch) ([]model.RestaurantListItem, error)
	getFn            func(ctx context.Context, id int64) (*model.Restaurant, error)
	createFn         func(ctx context.Context, req *model.CreateRestaurantRequest) (*model.RestaurantListItem, error)
	updateFn         func(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error)
	deleteFn         func(ctx context.Context, id int64) error
	upsertTimeslotFn func(ctx context.Context, id int64, req *model.DefaultTimeslotRequest) (*model.DiscountRule, error)
	timeslotsFn      func(ctx context.Context, id int64, date model.Date) ([]model.Slot, error)
	timeslotRangeFn  func(ctx context.Context, id int64, from model.Date, days int) ([]model.DaySlots, error)
}

func (m *mockRestaurantService) List(ctx context.Context, filter model.RestaurantFilter) ([]model.RestaurantListItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.RestaurantListItem{}, nil
}

func (m *mockRestaurantService) Search(ctx context.Context, search model.RestaurantSearch) ([]model.RestaurantListItem, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, search)
	}
	return []model.RestaurantListItem{}, nil
}

func (m *mockRestaurantService) Get(ctx context.Context, id int64) (*model.Restaurant, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Restaurant{ID: id}, nil
}

func (m *mockRestaurantService) Create(ctx context.Context, req *model.CreateRestaurantRequest) (*model.RestaurantListItem, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.RestaurantListItem{Restaurant: model.Restaurant{ID: 1, Name: req.Name}}, nil
}

func (m *mockRestaurantService) Update(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.Restaurant{ID: id}, nil
}

func (m *mockRestaurantService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRestaurantService) UpsertTimeslot(ctx context.Context, id int64, req *model.DefaultTimeslotRequest) (*model.DiscountRule, error) {
	if m.upsertTimeslotFn != nil {
		return m.upsertTimeslotFn(ctx, id, req)
	}
	return &model.DiscountRule{RestaurantID: id}, nil
}

func (m *mockRestaurantService) Timeslots(ctx context.Context, id int64, date model.Date) ([]model.Slot, error) {
	if m.timeslotsFn != nil {
		return m.timeslotsFn(ctx, id, date)
	}
	return []model.Slot{}, nil
}

func (m *mockRestaurantService) TimeslotRange(ctx context.Context, id int64, from model.Date, days int) ([]model.DaySlots, error) {
	if m.timeslotRangeFn != nil {
		return m.timeslotRangeFn(ctx, id, from, days)
	}
	return []model.DaySlots{}, nil
}

type mockPhotoService struct {
	uploadFn func(ctx context.Context, restaurantID int64, contentType string, data []byte) (*model.PhotoUploadResult, error)
	deleteFn func(ctx context.Context, restaurantID int64, index int) ([]string, error)
}

func (m *mockPhotoService) Upload(ctx context.Context, restaurantID int64, contentType string, data []byte) (*model.PhotoUploadResult, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, restaurantID, contentType, data)
	}
	return &model.PhotoUploadResult{}, nil
}

func (m *mockPhotoService) Delete(ctx context.Context, restaurantID int64, index int) ([]string, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, restaurantID, index)
	}
	return []string{}, nil
}

type mockDiscountService struct {
	createFn func(ctx context.Context, req *model.DiscountRuleRequest) (*model.DiscountRule, error)
	updateFn func(ctx context.Context, id int64, req *model.DiscountRuleRequest) (*model.DiscountRule, error)
	deleteFn func(ctx context.Context, id int64) error
	getFn    func(ctx context.Context, id int64) (*model.DiscountRule, error)
	listFn   func(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error)
}

func (m *mockDiscountService) Create(ctx context.Context, req *model.DiscountRuleRequest) (*model.DiscountRule, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.DiscountRule{ID: 1, RestaurantID: req.RestaurantID}, nil
}

func (m *mockDiscountService) Update(ctx context.Context, id int64, req *model.DiscountRuleRequest) (*model.DiscountRule, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.DiscountRule{ID: id}, nil
}

func (m *mockDiscountService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockDiscountService) Get(ctx context.Context, id int64) (*model.DiscountRule, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.DiscountRule{ID: id}, nil
}

func (m *mockDiscountService) List(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error) {
	if m.listFn != nil {
		return m.listFn(ctx, restaurantID)
	}
	return []model.DiscountRule{}, nil
}

type mockBookingService struct {
	createFn       func(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingConfirmation, error)
	verifyFn       func(ctx context.Context, code string) (*model.VerifyResult, error)
	getFn          func(ctx context.Context, id int64) (*model.Booking, error)
	listFn         func(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error)
	completedFn    func(ctx context.Context, limit int) ([]model.Booking, error)
	updateStatusFn func(ctx context.Context, id int64, status model.BookingStatus) (*model.Booking, error)
	deleteFn       func(ctx context.Context, id int64) error
}

func (m *mockBookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingConfirmation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.BookingConfirmation{ID: 1}, nil
}

func (m *mockBookingService) Verify(ctx context.Context, code string) (*model.VerifyResult, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, code)
	}
	return &model.VerifyResult{}, nil
}

func (m *mockBookingService) Get(ctx context.Context, id int64) (*model.Booking, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) List(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.Booking{}, nil
}

func (m *mockBookingService) Completed(ctx context.Context, limit int) ([]model.Booking, error) {
	if m.completedFn != nil {
		return m.completedFn(ctx, limit)
	}
	return []model.Booking{}, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) (*model.Booking, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return &model.Booking{ID: id, Status: status}, nil
}

func (m *mockBookingService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockSlotLister struct {
	slotsFn func(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, error)
}

func (m *mockSlotLister) Slots(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, error) {
	if m.slotsFn != nil {
		return m.slotsFn(ctx, restaurantID, date)
	}
	return []model.Slot{}, nil
}

type mockAuthService struct {
	loginFn func(username, password string) (*model.Token, error)
}

func (m *mockAuthService) Login(username, password string) (*model.Token, error) {
	if m.loginFn != nil {
		return m.loginFn(username, password)
	}
	return &model.Token{Token: "token"}, nil
}

type mockDashboardService struct {
	statsFn func(ctx context.Context) (*model.DashboardStats, error)
}

func (m *mockDashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &model.DashboardStats{Restaurants: []model.Restaurant{}}, nil
}

type mockCategoryService struct {
	categories []model.Category
}

func (m *mockCategoryService) List(ctx context.Context) []model.Category {
	return m.categories
}

// mocks holds every service mock behind a test app.
type mocks struct {
	restaurants *mockRestaurantService
	photos      *mockPhotoService
	discounts   *mockDiscountService
	bookings    *mockBookingService
	slots       *mockSlotLister
	auth        *mockAuthService
	dashboard   *mockDashboardService
	categories  *mockCategoryService
	db          *mockPool
}

var testToday = model.NewDate(2025, 6, 10)

func newMocks() *mocks {
	return &mocks{
		restaurants: &mockRestaurantService{},
		photos:      &mockPhotoService{},
		discounts:   &mockDiscountService{},
		bookings:    &mockBookingService{},
		slots:       &mockSlotLister{},
		auth:        &mockAuthService{},
		dashboard:   &mockDashboardService{},
		categories:  &mockCategoryService{},
		db:          &mockPool{},
	}
}

// adminHeader is the header value accepted by the test admin guard.
const adminHeader = "Bearer test-admin"

func setupTestApp(m *mocks) *fiber.App {
	app := fiber.New()
	v := validator.New()

	admin := func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != adminHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(model.Fail("unauthorized"))
		}
		return c.Next()
	}
	limit := func(c *fiber.Ctx) error { return c.Next() }

	RegisterRoutes(app, Handlers{
		Restaurants: NewRestaurantHandler(m.restaurants, m.photos, v, func() model.Date { return testToday }, RangeDefaults{Days: 7, MaxDays: 31}),
		Discounts:   NewDiscountHandler(m.discounts, v),
		Bookings:    NewBookingHandler(m.bookings, m.slots, v),
		Admin:       NewAdminHandler(m.auth, m.dashboard, m.categories, v),
		Health:      NewHealthHandler(m.db, nil, "test"),
	}, admin, limit)
	return app
}

// envelope mirrors model.Response with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func decodeMap(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}
