package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/school/admissions/controller"
	"schoolfee_backend/internals/features/school/admissions/service"
)

func AdmissionAdminRoutes(admin fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	g := admin.Group("/admissions")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/:id/approve", h.Approve)
	g.Post("/:id/reject", h.Reject)

	admin.Get("/students/:id", h.GetStudent)
}

func AdmissionPublicRoutes(public fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	public.Post("/admissions", h.Submit)
}
