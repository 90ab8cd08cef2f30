package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/installments/controller"
	"schoolfee_backend/internals/features/finance/installments/service"
)

func InstallmentAdminRoutes(admin fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	g := admin.Group("/installment-plans")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/schedule", h.Schedule)
}

// InstallmentPublicRoutes lets parents preview a schedule before paying.
func InstallmentPublicRoutes(public fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)
	public.Get("/installment-plans", h.List)
	public.Post("/installment-plans/:id/schedule", h.Schedule)
}
