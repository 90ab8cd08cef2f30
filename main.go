package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/robfig/cron/v3"

	"schoolfee_backend/internals/configs"
	database "schoolfee_backend/internals/databases"
	"schoolfee_backend/internals/databases/inmem"
	middlewares "schoolfee_backend/internals/middlewares"
	"schoolfee_backend/internals/notifications"
	"schoolfee_backend/internals/reporting"
	routes "schoolfee_backend/internals/route"
	"schoolfee_backend/internals/scheduler"
)

func main() {
	cfg := configs.LoadEnv()
	reporting.Init(cfg)

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            middlewares.ErrorHandler,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// request id + per-request deadline, aligned with the DB statement_timeout
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	middlewares.SetupMiddlewares(app, cfg)

	var mailer notifications.Mailer
	if cfg.SendgridAPIKey != "" {
		mailer = notifications.NewSendgridMailer(cfg.SendgridAPIKey, cfg.AppName, cfg.MailFromName, cfg.MailFromEmail)
	} else {
		log.Println("⚠️ SENDGRID_API_KEY is not set, mail goes to the console")
		mailer = notifications.NewConsoleMailer(cfg.MailFromName, cfg.MailFromEmail, false)
	}
	dispatcher := notifications.NewDispatcher(mailer, cfg.AppName)

	var stores routes.Stores
	switch cfg.DBDriver {
	case "memory":
		log.Println("⚠️ DB_DRIVER=memory, data lives only as long as this process")
		stores = routes.MemoryStores(inmem.New())
	default:
		database.ConnectDB()
		database.TunePool()
		database.WarmUpQueries()
		stores = routes.GormStores(database.DB)
	}

	svcs := routes.NewServices(stores, cfg, dispatcher)

	var reminders *cron.Cron
	if cfg.ReminderCron != "" && cfg.ReminderCron != "off" {
		c, err := scheduler.StartOverdueReminderScheduler(cfg.ReminderCron, svcs.Invoices, cfg.ReminderInterval, cfg.ReminderBatch)
		if err != nil {
			log.Fatalf("❌ reminder scheduler: %v", err)
		}
		reminders = c
	}

	routes.SetupRoutes(app, svcs, cfg)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if reminders != nil {
		<-reminders.Stop().Done()
	}
	dispatcher.Wait()
	reporting.Close()
	database.Close()
}
