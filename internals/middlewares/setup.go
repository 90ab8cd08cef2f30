package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/middlewares/logger"
)

func SetupMiddlewares(app *fiber.App, cfg configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware(cfg.CORSOrigins))
	app.Use(logger.LoggerMiddleware(cfg.TimeZone))
	app.Use(GlobalRateLimiter())
}
