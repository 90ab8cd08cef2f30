package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/reporting"
)

// ErrorHandler is the fiber.Config ErrorHandler: errors escaping handlers are written in the
// standard envelope and 5xx ones go to Rollbar.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		reporting.Error(c.UserContext(), err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("reqid"),
		})
	}
	return helper.FromFiberError(c, err)
}
