package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "schoolfee_backend/internals/helpers"
)

func limitBy(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// GlobalRateLimiter covers every endpoint.
func GlobalRateLimiter() fiber.Handler {
	return limitBy(120, time.Minute, "too many requests, try again shortly")
}

// AdmissionSubmitLimiter guards the public application form.
func AdmissionSubmitLimiter() fiber.Handler {
	return limitBy(5, 10*time.Minute, "too many applications from this address, try again later")
}
