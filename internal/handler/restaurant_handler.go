package handler

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// RestaurantServiceInterface defines the restaurant operations the handler needs.
type RestaurantServiceInterface interface {
	List(ctx context.Context, filter model.RestaurantFilter) ([]model.RestaurantListItem, error)
	Search(ctx context.Context, search model.RestaurantSearch) ([]model.RestaurantListItem, error)
	Get(ctx context.Context, id int64) (*model.Restaurant, error)
	Create(ctx context.Context, req *model.CreateRestaurantRequest) (*model.RestaurantListItem, error)
	Update(ctx context.Context, id int64, req model.UpdateRestaurantRequest) (*model.Restaurant, error)
	Delete(ctx context.Context, id int64) error
	UpsertTimeslot(ctx context.Context, id int64, req *model.DefaultTimeslotRequest) (*model.DiscountRule, error)
	Timeslots(ctx context.Context, id int64, date model.Date) ([]model.Slot, error)
	TimeslotRange(ctx context.Context, id int64, from model.Date, days int) ([]model.DaySlots, error)
}

// PhotoServiceInterface defines restaurant photo operations.
type PhotoServiceInterface interface {
	Upload(ctx context.Context, restaurantID int64, contentType string, data []byte) (*model.PhotoUploadResult, error)
	Delete(ctx context.Context, restaurantID int64, index int) ([]string, error)
}

// RangeDefaults bounds the multi-day timeslot view.
type RangeDefaults struct {
	Days    int
	MaxDays int
}

// RestaurantHandler handles HTTP requests for restaurants, their default
// timeslot and photos.
type RestaurantHandler struct {
	service   RestaurantServiceInterface
	photos    PhotoServiceInterface
	validator *validator.Validate
	today     func() model.Date
	ranges    RangeDefaults
}

// NewRestaurantHandler creates a new RestaurantHandler. today supplies the
// default start date of the multi-day timeslot view.
func NewRestaurantHandler(svc RestaurantServiceInterface, photos PhotoServiceInterface, v *validator.Validate, today func() model.Date, ranges RangeDefaults) *RestaurantHandler {
	if ranges.Days <= 0 {
		ranges.Days = 7
	}
	if ranges.MaxDays < ranges.Days {
		ranges.MaxDays = ranges.Days
	}
	return &RestaurantHandler{service: svc, photos: photos, validator: v, today: today, ranges: ranges}
}

// List handles GET /api/restaurants.
func (h *RestaurantHandler) List(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.service.List(c.Context(), model.RestaurantFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Limit:    intOr(limit, 0),
	})
	if err != nil {
		return respondError(c, err, "failed to list restaurants")
	}
	return c.JSON(model.OK(items))
}

// Search handles GET /api/restaurants/search.
func (h *RestaurantHandler) Search(c *fiber.Ctx) error {
	search := model.RestaurantSearch{
		Query:    c.Query("q"),
		Cuisine:  strings.TrimSpace(c.Query("cuisine")),
		Category: strings.TrimSpace(c.Query("category")),
	}

	var err error
	if search.DiscountMin, err = queryInt(c, "discount_min"); err != nil {
		return badRequest(c, err.Error())
	}
	if search.AvgCheckMin, err = queryInt(c, "avg_check_min"); err != nil {
		return badRequest(c, err.Error())
	}
	if search.AvgCheckMax, err = queryInt(c, "avg_check_max"); err != nil {
		return badRequest(c, err.Error())
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, err.Error())
	}
	search.Limit = intOr(limit, 0)

	items, err := h.service.Search(c.Context(), search)
	if err != nil {
		return respondError(c, err, "failed to search restaurants")
	}
	return c.JSON(model.OK(items))
}

// Get handles GET /api/restaurants/:id.
func (h *RestaurantHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	rest, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get restaurant")
	}
	return c.JSON(model.OK(rest))
}

// Create handles POST /api/restaurants.
func (h *RestaurantHandler) Create(c *fiber.Ctx) error {
	var req model.CreateRestaurantRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	item, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to create restaurant")
	}

	log.Info().
		Int64("restaurant_id", item.ID).
		Str("name", item.Name).
		Msg("restaurant created")

	return c.Status(fiber.StatusCreated).JSON(model.OKMessage(item, "Restaurant created"))
}

// Update handles PUT /api/restaurants/:id.
func (h *RestaurantHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	var req model.UpdateRestaurantRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	rest, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "failed to update restaurant")
	}
	return c.JSON(model.OKMessage(rest, "Restaurant updated"))
}

// Delete handles DELETE /api/restaurants/:id.
func (h *RestaurantHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "failed to delete restaurant")
	}

	log.Info().Int64("restaurant_id", id).Msg("restaurant deleted")
	return c.JSON(model.OKMessage(nil, "Restaurant deleted"))
}

// UpsertTimeslot handles PUT /api/restaurants/:id/timeslot.
func (h *RestaurantHandler) UpsertTimeslot(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	var req model.DefaultTimeslotRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	rule, err := h.service.UpsertTimeslot(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err, "failed to update timeslot")
	}
	return c.JSON(model.OKMessage(rule, "Timeslot updated"))
}

// Timeslots handles GET /api/restaurants/:id/timeslots. With ?date it
// returns that day's slots; otherwise ?from (default today) and ?days select
// a multi-day view.
func (h *RestaurantHandler) Timeslots(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	date, err := queryDate(c, "date")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if date != nil {
		slots, err := h.service.Timeslots(c.Context(), id, *date)
		if err != nil {
			return respondError(c, err, "failed to get timeslots")
		}
		return c.JSON(model.OK(slots))
	}

	from, err := queryDate(c, "from")
	if err != nil {
		return badRequest(c, err.Error())
	}
	start := h.today()
	if from != nil {
		start = *from
	}
	days, err := queryInt(c, "days")
	if err != nil {
		return badRequest(c, err.Error())
	}
	n := intOr(days, h.ranges.Days)
	if n < 1 || n > h.ranges.MaxDays {
		return badRequest(c, fmt.Sprintf("invalid request: days must be between 1 and %d", h.ranges.MaxDays))
	}

	out, err := h.service.TimeslotRange(c.Context(), id, start, n)
	if err != nil {
		return respondError(c, err, "failed to get timeslots")
	}
	return c.JSON(model.OK(out))
}

// UploadPhoto handles POST /api/restaurants/:id/photos with a multipart
// "file" field.
func (h *RestaurantHandler) UploadPhoto(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "invalid request: file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err, "failed to open uploaded photo")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err, "failed to read uploaded photo")
	}

	result, err := h.photos.Upload(c.Context(), id, fh.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		return respondError(c, err, "failed to upload photo")
	}

	log.Info().
		Int64("restaurant_id", id).
		Str("photo_url", result.PhotoURL).
		Int("total_photos", result.TotalPhotos).
		Msg("photo uploaded")

	return c.JSON(model.OKMessage(result, "Photo uploaded"))
}

// DeletePhoto handles DELETE /api/restaurants/:id/photos/:index.
func (h *RestaurantHandler) DeletePhoto(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "invalid request: index must be an integer")
	}

	photos, err := h.photos.Delete(c.Context(), id, index)
	if err != nil {
		return respondError(c, err, "failed to delete photo")
	}
	return c.JSON(model.OKMessage(photos, "Photo deleted"))
}
