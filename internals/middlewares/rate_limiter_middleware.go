package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func limitByIP(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": message,
			})
		},
	})
}

// Global limiter for every endpoint
func GlobalRateLimiter() fiber.Handler {
	return limitByIP(100, 1*time.Minute, "Too many requests. Please try again later.")
}

// Login is stricter
func LoginRateLimiter() fiber.Handler {
	return limitByIP(5, 1*time.Minute, "Too many login attempts. Please wait a moment.")
}

// Each checkout session costs a provider call and a donation row.
func CheckoutRateLimiter() fiber.Handler {
	return limitByIP(10, 1*time.Minute, "Too many checkout attempts. Please wait a moment and try again.")
}
