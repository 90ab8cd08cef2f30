package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/configs"
	database "schoolfee_backend/internals/databases"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/middlewares"
	authMiddleware "schoolfee_backend/internals/middlewares/auth"
	routeDetails "schoolfee_backend/internals/route/details"
)

var startTime time.Time

// SetupRoutes mounts three groups: /api/public (no auth), /api/a (staff JWT, admin or
// bursar) and /api/webhooks (gateway callbacks, verified by signature).
func SetupRoutes(app *fiber.App, s Services, cfg configs.Config) {
	startTime = time.Now()

	app.Get("/health", func(c *fiber.Ctx) error {
		if database.DB != nil {
			if err := database.Ping(c.UserContext()); err != nil {
				return helper.JsonError(c, fiber.StatusServiceUnavailable, "database unreachable")
			}
		}
		return helper.JsonOK(c, "ok", fiber.Map{
			"version": cfg.BuildVersion,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	})

	finance := routeDetails.FinanceServices{Fees: s.Fees, Plans: s.Plans, Invoices: s.Invoices, Payments: s.Payments}
	school := routeDetails.SchoolServices{Academics: s.Academics, Admissions: s.Admissions}

	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")
	public.Use("/admissions", middlewares.AdmissionSubmitLimiter())
	routeDetails.FinancePublicRoutes(public, finance)
	routeDetails.SchoolPublicRoutes(public, school)

	log.Println("[INFO] Setting up ADMIN group (JWT + staff role)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              cfg.JWTSecret,
			AllowCookieFallback: true,
		}),
		authMiddleware.StaffOnly(),
	)
	routeDetails.FinanceAdminRoutes(admin, finance)
	routeDetails.SchoolAdminRoutes(admin, school)

	log.Println("[INFO] Setting up WEBHOOK group...")
	hooks := app.Group("/api/webhooks")
	routeDetails.FinanceWebhookRoutes(hooks, finance)
}
