package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/invoices/controller"
	"schoolfee_backend/internals/features/finance/invoices/service"
)

func InvoiceAdminRoutes(admin fiber.Router, svc *service.Service, payments controller.PaymentLister) {
	h := controller.NewHandler(svc, payments)

	g := admin.Group("/invoices")
	g.Post("/compose", h.Compose)
	g.Post("/preview", h.Preview)
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Get("/:id/schedule", h.Schedule)
	g.Post("/:id/approve", h.Approve)
	g.Post("/:id/reject", h.Reject)
}

// InvoicePublicRoutes: guardians look up an invoice by id (from the email link).
func InvoicePublicRoutes(public fiber.Router, svc *service.Service, payments controller.PaymentLister) {
	h := controller.NewHandler(svc, payments)
	public.Get("/invoices/:id", h.Get)
	public.Get("/invoices/:id/schedule", h.Schedule)
}
