package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traceview/traceview-backend/internal/services"
)

// GetSnapshot returns the full current index snapshot.
func GetSnapshot(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Snapshots.Get()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(snap)
	}
}

// GetStats returns the snapshot's aggregate counters without the session list.
func GetStats(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Snapshots.Get()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"generated_at": snap.GeneratedAt,
			"totals":       snap.Totals,
			"tools":        snap.Tools,
			"daily":        snap.Daily,
		})
	}
}

// Reindex forces a rebuild and returns the new totals.
func Reindex(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := svc.Snapshots.Refresh()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"build_id":     snap.BuildID,
			"generated_at": snap.GeneratedAt,
			"totals":       snap.Totals,
		})
	}
}
