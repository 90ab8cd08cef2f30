package details

import (
	"github.com/gofiber/fiber/v2"

	academicRoute "schoolfee_backend/internals/features/school/academics/route"
	academicService "schoolfee_backend/internals/features/school/academics/service"
	admissionRoute "schoolfee_backend/internals/features/school/admissions/route"
	admissionService "schoolfee_backend/internals/features/school/admissions/service"
)

type SchoolServices struct {
	Academics  *academicService.Service
	Admissions *admissionService.Service
}

func SchoolPublicRoutes(r fiber.Router, s SchoolServices) {
	academicRoute.AcademicPublicRoutes(r, s.Academics)
	admissionRoute.AdmissionPublicRoutes(r, s.Admissions)
}

func SchoolAdminRoutes(r fiber.Router, s SchoolServices) {
	academicRoute.AcademicAdminRoutes(r, s.Academics)
	admissionRoute.AdmissionAdminRoutes(r, s.Admissions)
}
