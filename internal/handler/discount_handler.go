package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// DiscountServiceInterface defines discount rule operations.
type DiscountServiceInterface interface {
	Create(ctx context.Context, req *model.DiscountRuleRequest) (*model.DiscountRule, error)
	Update(ctx context.Context, id int64, req *model.DiscountRuleRequest) (*model.DiscountRule, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.DiscountRule, error)
	List(ctx context.Context, restaurantID int64) ([]model.DiscountRule, error)
}

// DiscountHandler handles HTTP requests for discount rules.
type DiscountHandler struct {
	service   DiscountServiceInterface
	validator *validator.Validate
}

// NewDiscountHandler creates a new DiscountHandler.
func NewDiscountHandler(svc DiscountServiceInterface, v *validator.Validate) *DiscountHandler {
	return &DiscountHandler{service: svc, validator: v}
}

// List handles GET /api/bookings/discount_rules.
func (h *DiscountHandler) List(c *fiber.Ctx) error {
	rid, err := queryInt(c, "restaurant_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	rules, err := h.service.List(c.Context(), int64(intOr(rid, 0)))
	if err != nil {
		return respondError(c, err, "failed to list discount rules")
	}
	return c.JSON(model.OK(rules))
}

// Get handles GET /api/bookings/discount_rules/:id.
func (h *DiscountHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	rule, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get discount rule")
	}
	return c.JSON(model.OK(rule))
}

// Create handles POST /api/bookings/discount_rules.
func (h *DiscountHandler) Create(c *fiber.Ctx) error {
	var req model.DiscountRuleRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	rule, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to create discount rule")
	}

	log.Info().
		Int64("rule_id", rule.ID).
		Int64("restaurant_id", rule.RestaurantID).
		Int("discount", rule.Discount).
		Msg("discount rule created")

	return c.Status(fiber.StatusCreated).JSON(model.OKMessage(rule, "Discount rule created"))
}

// Update handles PUT /api/bookings/discount_rules/:id.
func (h *DiscountHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	var req model.DiscountRuleRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	rule, err := h.service.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err, "failed to update discount rule")
	}
	return c.JSON(model.OKMessage(rule, "Discount rule updated"))
}

// Delete handles DELETE /api/bookings/discount_rules/:id.
func (h *DiscountHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid request: id must be a positive integer")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "failed to delete discount rule")
	}
	return c.JSON(model.OKMessage(nil, "Discount rule deleted"))
}
