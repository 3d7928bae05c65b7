package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db      Pinger
	cache   Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler. cache may be nil when Redis
// is not configured.
func NewHealthHandler(db Pinger, cache Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// Check pings the database and, when configured, Redis.
// Returns 200 with {"status": "healthy", "version": "..."} when both are reachable
// and 503 with {"status": "unhealthy", "error": "..."} otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"version": h.version,
			"error":   "database connection failed",
		})
	}
	if h.cache != nil {
		if err := h.cache.Ping(c.Context()); err != nil {
			log.Error().Err(err).Msg("health check failed: redis unreachable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "unhealthy",
				"version": h.version,
				"error":   "cache connection failed",
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": h.version,
	})
}
