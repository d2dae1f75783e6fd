package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/services"
)

type CreateReferralRequest struct {
	AffiliateID string                 `json:"affiliateId" validate:"required,uuid"`
	LeadName    string                 `json:"leadName" validate:"required"`
	LeadEmail   string                 `json:"leadEmail" validate:"required,email"`
	Metadata    map[string]interface{} `json:"metadata"`
	Notes       *string                `json:"notes"`
}

type UpdateReferralRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

func ListReferrals(c *fiber.Ctx) error {
	affiliateID, err := optionalUUIDQuery(c, "affiliateId")
	if err != nil {
		return respondError(c, err)
	}
	filter := services.ReferralFilter{AffiliateID: affiliateID}
	if raw := c.Query("status"); raw != "" {
		status := models.ReferralStatus(raw)
		if !status.Valid() {
			return badRequest(c, "Invalid referral status")
		}
		filter.Status = &status
	}

	referrals, err := services.ListReferrals(database.DB, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "referrals": referrals})
}

func CreateReferral(c *fiber.Ctx) error {
	var req CreateReferralRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	referral, err := services.CreateReferral(database.DB, services.CreateReferralInput{
		AffiliateID: uuid.MustParse(req.AffiliateID),
		LeadName:    req.LeadName,
		LeadEmail:   req.LeadEmail,
		Metadata:    req.Metadata,
		Notes:       req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "referral": referral})
}

func UpdateReferral(c *fiber.Ctx) error {
	id, err := uuidParam(c, "referralId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateReferralRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	referral, err := services.UpdateReferralStatus(database.DB, id, models.ReferralStatus(req.Status), req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "referral": referral})
}
