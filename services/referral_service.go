package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReferralInput struct {
	AffiliateID uuid.UUID
	LeadName    string
	LeadEmail   string
	Metadata    map[string]interface{}
	Notes       *string
}

type ReferralFilter struct {
	AffiliateID *uuid.UUID
	Status      *models.ReferralStatus
}

// CreateReferral registers a lead by hand. Manual leads start PENDING.
func CreateReferral(db *gorm.DB, in CreateReferralInput) (*models.Referral, error) {
	email := strings.ToLower(strings.TrimSpace(in.LeadEmail))
	if email == "" || strings.TrimSpace(in.LeadName) == "" {
		return nil, NewValidation("Lead name and email are required")
	}
	metadata, err := marshalMetadata(in.Metadata)
	if err != nil {
		return nil, NewValidation("Invalid referral metadata")
	}

	var referral models.Referral
	err = db.Transaction(func(tx *gorm.DB) error {
		var affiliate models.Affiliate
		if err := tx.First(&affiliate, "id = ?", in.AffiliateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Affiliate not found")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Referral{}).Where("lead_email = ? AND affiliate_id = ?", email, affiliate.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return NewConflict("A referral for this email already exists")
		}

		referral = models.Referral{
			AffiliateID: affiliate.ID,
			LeadName:    strings.TrimSpace(in.LeadName),
			LeadEmail:   email,
			Status:      models.ReferralPending,
			Metadata:    metadata,
			Notes:       in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(&referral).Error; err != nil {
			return err
		}
		return tx.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
			Update("total_leads", gorm.Expr("total_leads + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func ListReferrals(db *gorm.DB, filter ReferralFilter) ([]models.Referral, error) {
	query := db.Order("created_at desc")
	if filter.AffiliateID != nil {
		query = query.Where("affiliate_id = ?", *filter.AffiliateID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var referrals []models.Referral
	if err := query.Find(&referrals).Error; err != nil {
		return nil, err
	}
	return referrals, nil
}

func UpdateReferralStatus(db *gorm.DB, id uuid.UUID, status models.ReferralStatus, notes *string) (*models.Referral, error) {
	if !status.Valid() {
		return nil, NewValidation("Invalid referral status")
	}
	var referral models.Referral
	if err := db.First(&referral, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Referral not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if notes != nil {
		updates["notes"] = *notes
	}
	if err := db.Model(&referral).Updates(updates).Error; err != nil {
		return nil, err
	}
	referral.Status = status
	if notes != nil {
		referral.Notes = notes
	}
	return &referral, nil
}

// EnsureAffiliateProfile returns the affiliate profile of user, creating it
// or filling in a blank referral code when needed. created reports whether
// anything was written.
func EnsureAffiliateProfile(db *gorm.DB, user *models.User) (affiliate *models.Affiliate, created bool, err error) {
	if user.Role != models.RoleAffiliate {
		return nil, false, NewAuthorization("Access denied. Affiliate role required.")
	}

	var profile models.Affiliate
	err = db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("user_id = ?", user.ID).First(&profile).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			code, err := utils.GenerateUniqueReferralCode(tx, user.FullName)
			if err != nil {
				return err
			}
			profile = models.Affiliate{
				UserID:        user.ID,
				ReferralCode:  code,
				PayoutDetails: []byte("{}"),
			}
			created = true
			return tx.Omit(clause.Associations).Create(&profile).Error
		case findErr != nil:
			return findErr
		case strings.TrimSpace(profile.ReferralCode) == "":
			code, err := utils.GenerateUniqueReferralCode(tx, user.FullName)
			if err != nil {
				return err
			}
			profile.ReferralCode = code
			created = true
			return tx.Model(&profile).Update("referral_code", code).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &profile, created, nil
}
