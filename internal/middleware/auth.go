// Package middleware holds fiber middleware for admin authentication and
// per-client rate limiting.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
)

// ClaimsKey is the fiber.Ctx Locals key holding *service.AdminClaims.
const ClaimsKey = "admin_claims"

// TokenParser verifies admin tokens.
type TokenParser interface {
	ParseToken(token string) (*service.AdminClaims, error)
}

// AdminAuth rejects requests without a valid "Authorization: Bearer <jwt>"
// admin token with 401.
func AdminAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(model.Fail("missing or invalid Authorization header"))
		}

		claims, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			log.Warn().
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("rejected admin token")
			return c.Status(fiber.StatusUnauthorized).JSON(model.Fail(service.ErrInvalidToken.Error()))
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// Claims returns the admin claims set by AdminAuth, or nil.
func Claims(c *fiber.Ctx) *service.AdminClaims {
	claims, _ := c.Locals(ClaimsKey).(*service.AdminClaims)
	return claims
}
