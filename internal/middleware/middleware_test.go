package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
)

type mockTokenParser struct {
	parseFn func(token string) (*service.AdminClaims, error)
}

func (m *mockTokenParser) ParseToken(token string) (*service.AdminClaims, error) {
	if m.parseFn != nil {
		return m.parseFn(token)
	}
	return nil, service.ErrInvalidToken
}

func decodeEnvelope(t *testing.T, resp *http.Response) model.Response {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env model.Response
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func setupAuthApp(parser TokenParser) *fiber.App {
	app := fiber.New()
	app.Get("/admin", AdminAuth(parser), func(c *fiber.Ctx) error {
		return c.SendString(Claims(c).Subject)
	})
	return app
}

func TestAdminAuth(t *testing.T) {
	parser := &mockTokenParser{
		parseFn: func(token string) (*service.AdminClaims, error) {
			if token == "good" {
				claims := &service.AdminClaims{Role: service.RoleAdmin}
				claims.Subject = "admin"
				return claims, nil
			}
			return nil, service.ErrInvalidToken
		},
	}
	app := setupAuthApp(parser)

	testCases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", "Bearer good", fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong_scheme", "Basic good", fiber.StatusUnauthorized},
		{"empty_token", "Bearer   ", fiber.StatusUnauthorized},
		{"bad_token", "Bearer bad", fiber.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			if tc.wantStatus == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "admin", string(body))
				return
			}
			env := decodeEnvelope(t, resp)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	app := fiber.New()
	app.Post("/book", limiter.Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	status := func() int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/book", nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, status())
	assert.Equal(t, fiber.StatusCreated, status())
	assert.Equal(t, fiber.StatusTooManyRequests, status(), "burst exhausted")

	now = now.Add(time.Second)
	assert.Equal(t, fiber.StatusCreated, status(), "one token refills per second at 60/min")
}

func TestRateLimiter_PerClient(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	a := limiter.getLimiter("10.0.0.1")
	assert.Same(t, a, limiter.getLimiter("10.0.0.1"))
	assert.NotSame(t, a, limiter.getLimiter("10.0.0.2"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	now = now.Add(idleTTL + time.Minute)
	limiter.getLimiter("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.limiters, 1)
	assert.Contains(t, limiter.limiters, "10.0.0.2")
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(0, 0)

	assert.Equal(t, 1, limiter.burst)
	assert.InDelta(t, 1.0, float64(limiter.limit), 1e-9)
}
