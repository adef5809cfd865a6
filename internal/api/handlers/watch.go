package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/traceview/traceview-backend/internal/services"
)

// WatchUpgrade gates the watch endpoint to websocket requests.
func WatchUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Watch streams a notification to the client each time a rebuild installs a
// new snapshot. Slow clients miss intermediate snapshots rather than
// blocking a build.
func Watch(svc *services.Services) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		updates, cancel := svc.Snapshots.Subscribe()
		defer cancel()

		for snap := range updates {
			err := c.WriteJSON(fiber.Map{
				"build_id":     snap.BuildID,
				"generated_at": snap.GeneratedAt,
				"totals":       snap.Totals,
			})
			if err != nil {
				return
			}
		}
	})
}
