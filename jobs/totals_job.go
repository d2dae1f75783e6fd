package jobs

import (
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/services"
	"github.com/rs/zerolog/log"
)

// SyncAffiliateTotals corrects drift in the running click, lead and revenue
// counters.
func SyncAffiliateTotals() {
	log.Info().Msg("Running job: SyncAffiliateTotals...")

	updated, err := services.SyncAffiliateTotals(database.DB)
	if err != nil {
		log.Error().Err(err).Msg("Error syncing affiliate totals")
		return
	}

	log.Info().Int("affiliates", updated).Msg("Affiliate totals synced.")
}
