package auth

import (
	"github.com/gofiber/fiber/v2"

	helperAuth "schoolfee_backend/internals/helpers/auth"
)

// RequireRoles runs after AuthJWT.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := helperAuth.StaffFromCtx(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if !helperAuth.HasAnyRole(c, roles...) {
			return fiber.NewError(fiber.StatusForbidden, "your role may not access this resource")
		}
		return c.Next()
	}
}

// StaffOnly guards the /api/a group.
func StaffOnly() fiber.Handler {
	return RequireRoles(helperAuth.RoleAdmin, helperAuth.RoleBursar)
}
