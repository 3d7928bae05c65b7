package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// idleTTL is how long an unused client limiter is kept.
const idleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// getLimiter returns the limiter for ip, creating one if it doesn't exist.
// Idle limiters are dropped at most once per idleTTL.
func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleTTL {
		for key, cl := range l.limiters {
			if now.Sub(cl.lastSeen) > idleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Handler rejects requests over the limit with 429.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !l.getLimiter(ip).AllowN(l.now(), 1) {
			log.Warn().Str("ip", ip).Str("path", c.Path()).Msg("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(model.Fail("rate limit exceeded, try again later"))
		}
		return c.Next()
	}
}
