package jobs

import (
	"time"

	config "github.com/refferq/referral_api/configs"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/notifications"
	"github.com/refferq/referral_api/services"
	"github.com/rs/zerolog/log"
)

// AlertStalePayouts tells the admin about payouts that have sat in PENDING
// for longer than STALE_PAYOUT_DAYS.
func AlertStalePayouts() {
	log.Info().Msg("Running job: AlertStalePayouts...")

	days := config.ConfigInt("STALE_PAYOUT_DAYS", 7)
	stale, err := services.ListStalePayouts(database.DB, time.Duration(days)*24*time.Hour, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Error checking for stale payouts")
		return
	}
	if len(stale) == 0 {
		return
	}

	for _, p := range stale {
		log.Warn().
			Str("payout_id", p.ID.String()).
			Str("affiliate_id", p.AffiliateID.String()).
			Time("created_at", p.CreatedAt).
			Msg("Payout pending too long")
	}

	var admins []models.User
	if err := database.DB.Where("role = ? AND status = ?", models.RoleAdmin, models.UserStatusActive).Find(&admins).Error; err != nil {
		log.Error().Err(err).Msg("Error loading admins for stale payout alert")
		return
	}
	subject, body := notifications.StalePayoutsEmail(stale, days)
	for _, admin := range admins {
		go notifications.SendEmail(admin.FullName, admin.Email, subject, body)
	}
}
