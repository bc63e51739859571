package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/handlers"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/auth/manager/login", handlers.ManagerLogin)
}
