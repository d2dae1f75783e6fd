package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/middleware"
	"github.com/refferq/referral_api/services"
	"gorm.io/datatypes"
)

type UpdateIntegrationRequest struct {
	WebhookURL *string         `json:"webhookUrl" validate:"omitempty,url"`
	IsActive   *bool           `json:"isActive"`
	Config     json.RawMessage `json:"config"`
}

func GetIntegration(c *fiber.Ctx) error {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, services.NewAuthentication("Authentication required"))
	}
	integration, err := services.GetIntegration(database.DB, ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "integration": integration})
}

func GenerateAPIKeys(c *fiber.Ctx) error {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, services.NewAuthentication("Authentication required"))
	}
	integration, err := services.GenerateIntegrationKeys(database.DB, ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "API keys generated successfully",
		"publicKey": integration.PublicKey,
		"secretKey": integration.APIKey,
	})
}

func UpdateIntegration(c *fiber.Ctx) error {
	ownerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, services.NewAuthentication("Authentication required"))
	}
	var req UpdateIntegrationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	in := services.UpdateIntegrationInput{WebhookURL: req.WebhookURL, IsActive: req.IsActive}
	if len(req.Config) > 0 {
		in.Config = datatypes.JSON(req.Config)
	}
	integration, err := services.UpdateIntegration(database.DB, ownerID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "integration": integration})
}
