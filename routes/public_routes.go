package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/handlers"
	"github.com/refferq/referral_api/middleware"
)

// PublicRoutes serves the embeddable tracker and the API-key tracking
// endpoints that it calls from customer sites.
func PublicRoutes(app *fiber.App) {
	app.Static("/scripts", "./public/scripts")

	track := app.Group("/api/track", middleware.APIKeyRequired())
	track.Post("/referral", handlers.TrackReferral)
	track.Post("/conversion", handlers.TrackConversion)
}
