// handlers/health.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"checkpoint-rewards/observability"
)

func SetupHealthRoutes(app *fiber.App, metrics *observability.Metrics) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}
