package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saverana/donation-backend/handlers"
	"github.com/saverana/donation-backend/middleware"
)

func DonationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/donations", handlers.CreateDonation)
	api.Post("/donations/verify", handlers.VerifyDonation)
	api.Post("/donations/fail", handlers.FailDonation)

	api.Get("/donations", middleware.Protected(), middleware.ManagerRequired(), handlers.ListDonations)
	api.Get("/donations/stats", middleware.Protected(), middleware.ManagerRequired(), handlers.GetDonationStats)
	api.Get("/donations/history", middleware.Protected(), middleware.ManagerRequired(), handlers.GetDonationHistory)
}
