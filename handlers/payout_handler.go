package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/middleware"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/notifications"
	"github.com/refferq/referral_api/services"
	"github.com/rs/zerolog/log"
)

// PayPalSender is set at startup when PayPal credentials are configured.
var PayPalSender services.PayoutSender

// Statements controls PDF statement generation on payout completion.
var (
	StatementsEnabled  bool
	StatementGenerator = services.DefaultStatementGenerator()
)

type CreatePayoutRequest struct {
	AffiliateID    string   `json:"affiliateId" validate:"required,uuid"`
	TransactionIDs []string `json:"transactionIds" validate:"required,min=1,dive,uuid"`
	Method         string   `json:"method"`
	Notes          *string  `json:"notes"`
}

type UpdatePayoutRequest struct {
	Status            *string `json:"status"`
	Method            *string `json:"method"`
	Notes             *string `json:"notes"`
	ProviderReference *string `json:"providerReference"`
}

func ListPayouts(c *fiber.Ctx) error {
	affiliateID, err := optionalUUIDQuery(c, "affiliateId")
	if err != nil {
		return respondError(c, err)
	}
	payouts, err := services.ListPayouts(database.DB, affiliateID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "payouts": payouts})
}

func GetPayout(c *fiber.Ctx) error {
	id, err := uuidParam(c, "payoutId")
	if err != nil {
		return respondError(c, err)
	}
	payout, err := services.GetPayout(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "payout": payout})
}

func CreatePayout(c *fiber.Ctx) error {
	var req CreatePayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if len(req.TransactionIDs) == 0 {
		return badRequest(c, "At least one commission is required")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ids := make([]uuid.UUID, 0, len(req.TransactionIDs))
	for _, raw := range req.TransactionIDs {
		ids = append(ids, uuid.MustParse(raw))
	}
	var createdBy *uuid.UUID
	if adminID, err := middleware.CurrentUserID(c); err == nil {
		createdBy = &adminID
	}

	payout, err := services.CreatePayout(database.DB, services.CreatePayoutInput{
		AffiliateID:    uuid.MustParse(req.AffiliateID),
		TransactionIDs: ids,
		Method:         req.Method,
		Notes:          req.Notes,
		CreatedBy:      createdBy,
	})
	if err != nil {
		return respondError(c, err)
	}

	if full, err := services.GetPayout(database.DB, payout.ID); err == nil {
		subject, body := notifications.PayoutCreatedEmail(full.Affiliate.User, *full)
		go notifications.SendEmail(full.Affiliate.User.FullName, full.Affiliate.User.Email, subject, body)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Payout created successfully",
		"payout":  payout,
	})
}

func UpdatePayout(c *fiber.Ctx) error {
	id, err := uuidParam(c, "payoutId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdatePayoutRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	before, err := services.GetPayout(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}

	in := services.UpdatePayoutInput{
		Method:            req.Method,
		Notes:             req.Notes,
		ProviderReference: req.ProviderReference,
	}
	if req.Status != nil {
		status := models.PayoutStatus(*req.Status)
		in.Status = &status
	}

	method := before.Method
	if req.Method != nil {
		method = *req.Method
	}
	if in.Status != nil && *in.Status == models.PayoutProcessing && before.Status == models.PayoutPending &&
		method == models.PayoutMethodPayPal && PayPalSender != nil {
		if req.Method != nil {
			if _, err := services.UpdatePayout(database.DB, id, services.UpdatePayoutInput{Method: req.Method}); err != nil {
				return respondError(c, err)
			}
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
		defer cancel()
		if _, err := services.StartPayPalPayout(ctx, database.DB, PayPalSender, id); err != nil {
			return respondError(c, err)
		}
		in.Status = nil
		in.ProviderReference = nil
	}

	payout, err := services.UpdatePayout(database.DB, id, in)
	if err != nil {
		return respondError(c, err)
	}

	if before.Status != models.PayoutCompleted && payout.Status == models.PayoutCompleted {
		go onPayoutCompleted(*payout, before.Affiliate.User)
	}

	return c.JSON(fiber.Map{"success": true, "payout": payout})
}

func onPayoutCompleted(payout models.Payout, user models.User) {
	if StatementsEnabled {
		url, err := services.GeneratePayoutStatement(context.Background(), database.DB, StatementGenerator, payout.ID)
		if err != nil {
			log.Error().Err(err).Str("payout_id", payout.ID.String()).Msg("🔥 Failed to generate payout statement")
		} else {
			payout.StatementURL = &url
		}
	}
	subject, body := notifications.PayoutCompletedEmail(user, payout)
	notifications.SendEmail(user.FullName, user.Email, subject, body)
}

func DeletePayout(c *fiber.Ctx) error {
	id, err := uuidParam(c, "payoutId")
	if err != nil {
		return respondError(c, err)
	}
	if err := services.DeletePayout(database.DB, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Payout deleted"})
}
