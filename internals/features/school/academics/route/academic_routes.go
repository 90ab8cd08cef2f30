package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/features/school/academics/controller"
	"schoolfee_backend/internals/features/school/academics/service"
)

func AcademicAdminRoutes(admin fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	cls := admin.Group("/classes")
	cls.Post("/", h.CreateClass)
	cls.Post("/:id/sections", h.CreateSection)

	terms := admin.Group("/academic-terms")
	terms.Post("/", h.CreateTerm)
	terms.Patch("/:id", h.UpdateTerm)
}

func AcademicPublicRoutes(public fiber.Router, svc *service.Service) {
	h := controller.NewHandler(svc)

	public.Get("/classes", h.ListClasses)
	public.Get("/classes/:id/sections", h.ListSections)
	public.Get("/academic-terms", h.ListTerms)
	public.Get("/academic-terms/:id", h.GetTerm)
}
