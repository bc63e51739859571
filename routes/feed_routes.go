package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/middleware"
	ws "github.com/saverana/donation-backend/websocket"
)

// FeedRoutes exposes the live completed-donation feed for manager dashboards.
func FeedRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	api.Get("/ws/donations", middleware.Protected(), middleware.ManagerRequired(), websocket.New(ws.FeedHandler))
}
