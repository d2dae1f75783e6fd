package main

import (
	"os"

	config "github.com/refferq/referral_api/configs"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/handlers"
	"github.com/refferq/referral_api/jobs"
	"github.com/refferq/referral_api/notifications"
	"github.com/refferq/referral_api/payments"
	"github.com/refferq/referral_api/routes"
	"github.com/refferq/referral_api/services"
	"github.com/refferq/referral_api/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if config.Config("APP_ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	database.ConnectDB()
	database.Migrate()
	if err := database.SeedAdmin(database.DB,
		config.Config("ADMIN_EMAIL"),
		config.Config("ADMIN_PASSWORD"),
		config.ConfigDefault("ADMIN_FULL_NAME", "Administrator"),
	); err != nil {
		log.Error().Err(err).Msg("🔥 Failed to seed admin user")
	}
	notifications.InitEmailService()

	rate := config.ConfigFloat("DEFAULT_COMMISSION_RATE", services.DefaultCommissionRate)
	if services.ValidCommissionRate(rate) {
		services.DefaultCommissionRate = rate
	} else {
		log.Warn().Float64("rate", rate).Msg("Ignoring invalid DEFAULT_COMMISSION_RATE")
	}

	if paypal := payments.NewPayPalClientFromConfig(); paypal != nil {
		handlers.PayPalSender = paypal
		log.Info().Msg("✅ PayPal payouts enabled")
	}
	handlers.StatementsEnabled = config.Config("CLOUDINARY_URL") != ""

	c := cron.New()
	if _, err := c.AddFunc("@hourly", jobs.SyncAffiliateTotals); err != nil {
		log.Fatal().Err(err).Msg("🔥 Failed to schedule totals sync")
	}
	if _, err := c.AddFunc("0 9 * * *", jobs.AlertStalePayouts); err != nil {
		log.Fatal().Err(err).Msg("🔥 Failed to schedule stale payout alert")
	}
	c.Start()
	log.Info().Msg("✅ Cron jobs scheduled successfully.")

	go websocket.RunHub()

	app := routes.NewApp()

	port := config.ConfigDefault("PORT", "8080")
	log.Info().Str("port", port).Msg("✅ Server is running")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("🔥 Server failed to start")
	}
}
