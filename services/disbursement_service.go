package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/payments"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PayoutSender is implemented by payments.PayPalClient.
type PayoutSender interface {
	SendPayout(ctx context.Context, req payments.PayoutRequest) (string, error)
}

// payoutReceiver prefers payout_details.paypal_email over the login email.
func payoutReceiver(affiliate models.Affiliate) string {
	var details map[string]interface{}
	if len(affiliate.PayoutDetails) > 0 && json.Unmarshal(affiliate.PayoutDetails, &details) == nil {
		if email, ok := details["paypal_email"].(string); ok && email != "" {
			return email
		}
	}
	return affiliate.User.Email
}

// StartPayPalPayout sends a PENDING PayPal payout to the provider and moves
// it to PROCESSING with the batch id as provider reference. When the
// provider call fails the payout is left untouched.
func StartPayPalPayout(ctx context.Context, db *gorm.DB, sender PayoutSender, id uuid.UUID) (*models.Payout, error) {
	payout, err := GetPayout(db, id)
	if err != nil {
		return nil, err
	}
	if payout.Method != models.PayoutMethodPayPal {
		return nil, NewValidation("Payout method is not PayPal")
	}
	if !CanTransitionPayout(payout.Status, models.PayoutProcessing) {
		return nil, NewValidation("Cannot move payout from " + string(payout.Status) + " to " + string(models.PayoutProcessing))
	}

	batchID, err := sender.SendPayout(ctx, payments.PayoutRequest{
		PayoutID:      payout.ID.String(),
		ReceiverEmail: payoutReceiver(payout.Affiliate),
		AmountCents:   payout.AmountCents,
		Currency:      DefaultCurrency,
		Note:          "Affiliate commission payout",
	})
	if err != nil {
		log.Error().Err(err).Str("payout_id", payout.ID.String()).Msg("🔥 PayPal payout failed")
		return nil, NewInternal("Failed to send PayPal payout", err).WithStatus(502)
	}

	status := models.PayoutProcessing
	return UpdatePayout(db, id, UpdatePayoutInput{Status: &status, ProviderReference: &batchID})
}
