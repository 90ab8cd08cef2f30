package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/finance/payments/controller"
	"schoolfee_backend/internals/features/finance/payments/service"
)

func PaymentAdminRoutes(admin fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	admin.Post("/invoices/:id/payments", h.Record)
	admin.Get("/invoices/:id/payments", h.ListForInvoice)

	g := admin.Group("/payments")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
}

func PaymentPublicRoutes(public fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)
	public.Post("/invoices/:id/checkout", h.Checkout)
	public.Get("/invoices/:id/payments", h.ListForInvoice)
}

func PaymentWebhookRoutes(hooks fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)
	hooks.Post("/midtrans", h.MidtransWebhook)
}
