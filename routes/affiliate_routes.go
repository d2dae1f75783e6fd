package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/handlers"
	"github.com/refferq/referral_api/middleware"
)

func AffiliateRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	affiliate := api.Group("/affiliate", middleware.Protected(), middleware.AffiliateRequired())
	affiliate.Post("/generate-code", handlers.GenerateReferralCode)
	affiliate.Get("/me", handlers.GetMyAffiliate)
}
