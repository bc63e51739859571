package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/handlers"
)

func WebhookRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/webhooks/razorpay", handlers.HandleRazorpayWebhook)
}
