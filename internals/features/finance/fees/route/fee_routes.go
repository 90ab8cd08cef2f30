package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/fees/controller"
	"schoolfee_backend/internals/features/finance/fees/service"
)

// FeeAdminRoutes mounts fee catalogue management under the staff group.
func FeeAdminRoutes(admin fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	groups := admin.Group("/fee-groups")
	groups.Post("/", h.CreateGroup)
	groups.Get("/", h.ListGroups)
	groups.Get("/:id", h.GetGroup)
	groups.Patch("/:id", h.UpdateGroup)

	items := admin.Group("/fee-items")
	items.Post("/", h.CreateItem)
	items.Get("/", h.ListItems)
	items.Get("/:id", h.GetItem)
	items.Patch("/:id", h.UpdateItem)
	items.Delete("/:id", h.DeactivateItem)

	rules := admin.Group("/fee-rules")
	rules.Get("/resolve", h.Resolve)
	rules.Get("/exists", h.RuleExists)
	rules.Post("/", h.CreateRule)
	rules.Get("/", h.ListRules)
	rules.Get("/:id", h.GetRule)
	rules.Patch("/:id", h.UpdateRule)
	rules.Post("/:id/deactivate", h.DeactivateRule)
	rules.Delete("/:id", h.DeleteRule)
}

// FeePublicRoutes exposes the read-only catalogue (e.g. optional items on the admission form).
func FeePublicRoutes(public fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)
	public.Get("/fee-items", h.ListItems)
	public.Get("/fee-groups", h.ListGroups)
}
