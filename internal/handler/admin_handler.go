package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// AuthServiceInterface issues admin tokens.
type AuthServiceInterface interface {
	Login(username, password string) (*model.Token, error)
}

// DashboardServiceInterface computes admin dashboard figures.
type DashboardServiceInterface interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

// CategoryServiceInterface lists restaurant categories.
type CategoryServiceInterface interface {
	List(ctx context.Context) []model.Category
}

// AdminHandler handles login, the dashboard and the category catalog.
type AdminHandler struct {
	auth       AuthServiceInterface
	dashboard  DashboardServiceInterface
	categories CategoryServiceInterface
	validator  *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(auth AuthServiceInterface, dashboard DashboardServiceInterface, categories CategoryServiceInterface, v *validator.Validate) *AdminHandler {
	return &AdminHandler{auth: auth, dashboard: dashboard, categories: categories, validator: v}
}

// Login handles POST /api/auth/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if msg, ok := bind(c, h.validator, &req); !ok {
		return badRequest(c, msg)
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		log.Warn().Str("username", req.Username).Str("ip", c.IP()).Msg("admin login failed")
		return respondError(c, err, "failed to log in")
	}
	return c.JSON(model.OK(token))
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.Context())
	if err != nil {
		return respondError(c, err, "failed to load dashboard")
	}
	return c.JSON(model.OK(stats))
}

// Categories handles GET /api/categories.
func (h *AdminHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(model.OK(h.categories.List(c.Context())))
}
