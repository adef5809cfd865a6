package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traceview/traceview-backend/internal/api/handlers"
	"github.com/traceview/traceview-backend/internal/services"
)

// SetupRoutes configures all API routes.
func SetupRoutes(app *fiber.App, svc *services.Services) {
	api := app.Group("/api/v1")

	// Index queries
	api.Get("/snapshot", handlers.GetSnapshot(svc))
	api.Get("/stats", handlers.GetStats(svc))
	api.Post("/reindex", handlers.Reindex(svc))

	// Sessions
	api.Get("/sessions", handlers.GetSessions(svc))
	api.Get("/sessions/:id/timeline", handlers.GetSessionTimeline(svc))

	// Live rebuild notifications
	api.Use("/watch", handlers.WatchUpgrade())
	api.Get("/watch", handlers.Watch(svc))

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "traceview-backend",
		})
	})
}
