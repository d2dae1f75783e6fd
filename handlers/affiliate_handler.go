package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/middleware"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/services"
)

func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return nil, services.NewAuthentication("Authentication required")
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, services.NewNotFound("User not found")
	}
	return &user, nil
}

func GenerateReferralCode(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	affiliate, created, err := services.EnsureAffiliateProfile(database.DB, user)
	if err != nil {
		return respondError(c, err)
	}

	message := "Referral code already exists"
	if created {
		message = "Referral code generated successfully"
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      message,
		"referralCode": affiliate.ReferralCode,
		"affiliate":    affiliate,
	})
}

func GetMyAffiliate(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, services.NewAuthentication("Authentication required"))
	}

	summary, err := services.GetAffiliateSummary(database.DB, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}
