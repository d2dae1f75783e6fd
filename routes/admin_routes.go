package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/handlers"
	"github.com/refferq/referral_api/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard", handlers.GetDashboardStats)

	affiliates := admin.Group("/affiliates")
	affiliates.Get("", handlers.ListAffiliates)
	affiliates.Put("/:affiliateId/partner-group", handlers.AssignAffiliateGroup)

	admin.Put("/users/:userId/status", handlers.UpdateUserStatus)

	referrals := admin.Group("/referrals")
	referrals.Get("", handlers.ListReferrals)
	referrals.Post("", handlers.CreateReferral)
	referrals.Put("/:referralId", handlers.UpdateReferral)

	transactions := admin.Group("/transactions")
	transactions.Get("", handlers.ListTransactions)
	transactions.Post("", handlers.CreateTransaction)
	transactions.Put("/:transactionId", handlers.UpdateTransaction)
	transactions.Delete("/:transactionId", handlers.DeleteTransaction)

	payouts := admin.Group("/payouts")
	payouts.Get("", handlers.ListPayouts)
	payouts.Post("", handlers.CreatePayout)
	payouts.Get("/:payoutId", handlers.GetPayout)
	payouts.Put("/:payoutId", handlers.UpdatePayout)
	payouts.Delete("/:payoutId", handlers.DeletePayout)

	groups := admin.Group("/partner-groups")
	groups.Get("", handlers.ListPartnerGroups)
	groups.Post("", handlers.CreatePartnerGroup)
	groups.Put("/:groupId", handlers.UpdatePartnerGroup)
	groups.Delete("/:groupId", handlers.DeletePartnerGroup)

	integration := admin.Group("/integration")
	integration.Get("", handlers.GetIntegration)
	integration.Put("", handlers.UpdateIntegration)
	integration.Post("/generate-key", handlers.GenerateAPIKeys)

	admin.Get("/live", handlers.RequireWebSocketUpgrade, websocket.New(handlers.ServeLiveFeed))
}
