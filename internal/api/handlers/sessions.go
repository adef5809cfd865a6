package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traceview/traceview-backend/internal/services"
)

// GetSessions returns all session summaries in discovery order.
func GetSessions(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Snapshots.Get()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"sessions": snap.Sessions,
		})
	}
}

// GetSessionTimeline returns one session's reconstructed timeline. Unknown
// ids come back as a well-formed response with a single error event.
func GetSessionTimeline(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		resp, err := svc.Timelines.Timeline(sessionID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(resp)
	}
}
