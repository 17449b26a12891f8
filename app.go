package main

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"checkpoint-rewards/config"
	"checkpoint-rewards/handlers"
	"checkpoint-rewards/middleware"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/services"
)

// appServices is everything the HTTP layer calls into.
type appServices struct {
	players     *services.PlayerService
	checkins    *services.CheckinService
	checkpoints *services.CheckpointService
	rewards     *services.EventRewardService
	events      *services.EventQueryService
	transfers   *services.TransferService
	metrics     *observability.Metrics
}

func newApp(cfg *config.Config, svc appServices) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-Email",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Request-ID",
		AllowCredentials: !containsWildcard(cfg.Server.AllowedOrigins),
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestLogger())

	// Probes stay outside the gateway check.
	handlers.SetupHealthRoutes(app, svc.metrics)

	api := app.Group("/api", middleware.GatewayAuth(cfg.Server.GatewayToken))

	handlers.SetupCheckinRoutes(api, handlers.NewCheckinHandler(svc.players, svc.checkins))
	handlers.SetupPlayerRoutes(api, svc.players)
	handlers.SetupTransferRoutes(api, svc.transfers)

	events := handlers.NewEventHandler(svc.events)
	handlers.SetupEventRoutes(api, events)

	admin := api.Group("/admin", middleware.AdminOnly(cfg.Admin.Emails))
	handlers.SetupAdminRoutes(admin, svc.checkpoints, svc.rewards)
	handlers.SetupEventAdminRoutes(admin, events)

	return app
}

// Fiber refuses AllowCredentials together with a "*" origin.
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
