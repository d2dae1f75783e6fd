package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const integrationProvider = "refferq"

type UpdateIntegrationInput struct {
	WebhookURL *string
	IsActive   *bool
	Config     datatypes.JSON
}

func GetIntegration(db *gorm.DB, ownerID uuid.UUID) (*models.IntegrationSettings, error) {
	var integration models.IntegrationSettings
	if err := db.Where("user_id = ?", ownerID).First(&integration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

// GenerateIntegrationKeys creates the owner's key pair or rotates it. The
// previous public key stops working immediately.
func GenerateIntegrationKeys(db *gorm.DB, ownerID uuid.UUID) (*models.IntegrationSettings, error) {
	publicKey, err := utils.GenerateKey("pk_")
	if err != nil {
		return nil, NewInternal("Failed to generate API keys", err)
	}
	secretKey, err := utils.GenerateKey("sk_")
	if err != nil {
		return nil, NewInternal("Failed to generate API keys", err)
	}

	var integration models.IntegrationSettings
	err = db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("user_id = ?", ownerID).First(&integration).Error
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			integration = models.IntegrationSettings{
				UserID:    ownerID,
				PublicKey: publicKey,
				APIKey:    secretKey,
				Provider:  integrationProvider,
				IsActive:  true,
				Config:    datatypes.JSON("{}"),
			}
			return tx.Create(&integration).Error
		}
		if findErr != nil {
			return findErr
		}

		integration.PublicKey = publicKey
		integration.APIKey = secretKey
		integration.Provider = integrationProvider
		integration.IsActive = true
		return tx.Save(&integration).Error
	})
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

func UpdateIntegration(db *gorm.DB, ownerID uuid.UUID, in UpdateIntegrationInput) (*models.IntegrationSettings, error) {
	integration, err := GetIntegration(db, ownerID)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, NewNotFound("No integration configured. Generate API keys to get started.")
	}

	if in.WebhookURL != nil {
		integration.WebhookURL = in.WebhookURL
	}
	if in.IsActive != nil {
		integration.IsActive = *in.IsActive
	}
	if in.Config != nil {
		integration.Config = in.Config
	}
	if err := db.Save(integration).Error; err != nil {
		return nil, err
	}
	return integration, nil
}
