package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"schoolfee_backend/internals/reporting"
)

// RecoveryMiddleware turns a panic into a 500 and reports it.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			reporting.Recovered(c.UserContext(), c.Method()+" "+c.Path(), e)
		},
	})
}
