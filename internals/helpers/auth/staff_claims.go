package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocStaffSubject = "staff_subject"
	LocStaffRole    = "staff_role"
	LocStaffName    = "staff_name"
)

const (
	RoleAdmin  = "admin"
	RoleBursar = "bursar"
)

type Staff struct {
	Subject string
	Role    string
	Name    string
}

func localString(c *fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// StaffFromCtx returns the authenticated staff member, ok=false on public routes.
func StaffFromCtx(c *fiber.Ctx) (Staff, bool) {
	s := Staff{
		Subject: localString(c, LocStaffSubject),
		Role:    localString(c, LocStaffRole),
		Name:    localString(c, LocStaffName),
	}
	return s, s.Subject != ""
}

// Actor is the token subject, recorded as processor/receiver.
func Actor(c *fiber.Ctx) string {
	return localString(c, LocStaffSubject)
}

func HasAnyRole(c *fiber.Ctx, roles ...string) bool {
	have := strings.ToLower(localString(c, LocStaffRole))
	for _, r := range roles {
		if have == strings.ToLower(r) {
			return true
		}
	}
	return false
}
