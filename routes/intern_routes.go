package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/handlers"
	"github.com/saverana/donation-backend/middleware"
)

func InternRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/interns/signup", handlers.InternSignup)
	api.Post("/interns/login", handlers.InternLogin)

	api.Get("/interns/donations", middleware.Protected(), middleware.InternRequired(), handlers.GetInternDonations)
	api.Get("/interns", middleware.Protected(), middleware.ManagerRequired(), handlers.ListInterns)
}
