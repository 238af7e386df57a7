package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/lac-hong-legacy/authguard/shared"
)

// Limiter is the slice of the rate limit service the middleware needs.
type Limiter interface {
	CheckRateLimit(ctx context.Context, identity, path string) (bool, string)
}

// RateLimit counts every request against the caller's IP and rejects once a
// window ceiling is hit. The exceeded tier is reported back to the caller.
func RateLimit(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := GetClientIP(c)
		c.Locals(shared.ClientIP, ip)

		allowed, tier := limiter.CheckRateLimit(c.UserContext(), ip, c.Path())
		if !allowed {
			appErr := shared.NewRateLimitError("too many requests, please try again later", fiber.Map{
				"tier": tier,
			})
			return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
		}

		return c.Next()
	}
}
