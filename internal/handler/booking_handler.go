package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/middleware"
	"github.com/fairyhunter13/restoboost/internal/model"
)

// BookingServiceInterface defines booking operations.
type BookingServiceInterface interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingConfirmation, error)
	Verify(ctx context.Context, code string) (*model.VerifyResult, error)
	Get(ctx context.Context, id int64) (*model.Booking, error)
	List(ctx context.Context, filter model.BookingFilter) ([]model.Booking, error)
	Completed(ctx context.Context, limit int) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) (*model.Booking, error)
	Delete(ctx context.Context, id int64) error
}

// SlotLister returns the annotated slots of a restaurant on a date.
type SlotLister interface {
	Slots(ctx context.Context, restaurantID int64, date model.Date) ([]model.Slot, error)
}

// BookingHandler handles HTTP requests for bookings and QR check-in.
type BookingHandler struct {
	service   BookingServiceInterface
	slots     SlotLister
	validator *validator.Validate
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(svc BookingServiceInterface, slots SlotLister, v *validator.Validate) *BookingHandler {
	return &BookingHandler{service: svc, slots: slots, validator: v}
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req model.CreateBookingRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	conf, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to create booking")
	}

	log.Info().
		Int64("booking_id", conf.ID).
		Int64("restaurant_id", req.RestaurantID).
		Str("confirmation_code", conf.ConfirmationCode).
		Int("discount", conf.Discount).
		Msg("booking created")

	return c.Status(fiber.StatusCreated).JSON(model.OKMessage(conf, "Booking created successfully"))
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	b, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get booking")
	}
	return c.JSON(model.OK(b))
}

// List handles GET /api/bookings.
func (h *BookingHandler) List(c *fiber.Ctx) error {
	filter := model.BookingFilter{
		Phone:  strings.TrimSpace(c.Query("phone")),
		Status: model.BookingStatus(strings.TrimSpace(c.Query("status"))),
	}

	rid, err := queryInt(c, "restaurant_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.RestaurantID = int64(intOr(rid, 0))
	if filter.Date, err = queryDate(c, "date"); err != nil {
		return badRequest(c, err.Error())
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.Limit = intOr(limit, 0)

	bookings, err := h.service.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err, "failed to list bookings")
	}
	return c.JSON(model.OK(bookings))
}

// AvailableSlots handles GET /api/bookings/available-slots.
func (h *BookingHandler) AvailableSlots(c *fiber.Ctx) error {
	rid, err := queryInt(c, "restaurant_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if rid == nil || *rid <= 0 {
		return badRequest(c, "invalid request: restaurant_id is required")
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if date == nil {
		return badRequest(c, "invalid request: date is required")
	}

	slots, err := h.slots.Slots(c.Context(), int64(*rid), *date)
	if err != nil {
		return respondError(c, err, "failed to get available slots")
	}
	return c.JSON(model.OK(slots))
}

// Completed handles GET /api/bookings/completed.
func (h *BookingHandler) Completed(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, err.Error())
	}

	bookings, err := h.service.Completed(c.Context(), intOr(limit, 0))
	if err != nil {
		return respondError(c, err, "failed to list completed bookings")
	}
	return c.JSON(model.OK(bookings))
}

// UpdateStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	var req model.UpdateStatusRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	b, err := h.service.UpdateStatus(c.Context(), id, model.BookingStatus(req.Status))
	if err != nil {
		return respondError(c, err, "failed to update booking status")
	}

	log.Info().
		Int64("booking_id", id).
		Str("status", req.Status).
		Msg("booking status updated")

	return c.JSON(model.OKMessage(b, "Booking status updated"))
}

// Delete handles DELETE /api/bookings/:id.
func (h *BookingHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "failed to delete booking")
	}
	return c.JSON(model.OKMessage(nil, "Booking deleted"))
}

// VerifyQR handles POST /api/bookings/verify-qr.
func (h *BookingHandler) VerifyQR(c *fiber.Ctx) error {
	var req model.VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.service.Verify(c.Context(), req.Code)
	if err != nil {
		return respondError(c, err, "failed to verify booking code")
	}

	staff := ""
	if claims := middleware.Claims(c); claims != nil {
		staff = claims.Subject
	}
	log.Info().
		Int64("booking_id", result.Booking.ID).
		Str("verified_by", staff).
		Str("confirmation_code", result.Booking.ConfirmationCode).
		Int("discount", result.Discount).
		Msg("booking checked in")

	return c.JSON(model.OKMessage(result, fmt.Sprintf("Booking confirmed! Discount %d%% applied", result.Discount)))
}
