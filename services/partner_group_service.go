package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"gorm.io/gorm"
)

const invalidRateMessage = "Commission rate must be a number between 0 and 1 (e.g., 0.20 for 20%)"

type PartnerGroupInput struct {
	Name           *string
	Description    *string
	CommissionRate *float64
	SignupURL      *string
	IsDefault      *bool
}

type PartnerGroupWithCount struct {
	models.PartnerGroup
	MemberCount int64 `json:"member_count"`
}

func ListPartnerGroups(db *gorm.DB) ([]PartnerGroupWithCount, error) {
	var groups []models.PartnerGroup
	if err := db.Order("created_at desc").Find(&groups).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		PartnerGroupID uuid.UUID
		Count          int64
	}
	var rows []countRow
	if err := db.Model(&models.Affiliate{}).
		Select("partner_group_id, COUNT(*) as count").
		Where("partner_group_id IS NOT NULL").
		Group("partner_group_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.PartnerGroupID] = r.Count
	}

	out := make([]PartnerGroupWithCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, PartnerGroupWithCount{PartnerGroup: g, MemberCount: counts[g.ID]})
	}
	return out, nil
}

func CreatePartnerGroup(db *gorm.DB, in PartnerGroupInput) (*models.PartnerGroup, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, NewValidation("Partner group name is required")
	}
	if in.CommissionRate == nil || !ValidCommissionRate(*in.CommissionRate) {
		return nil, NewValidation(invalidRateMessage)
	}

	group := models.PartnerGroup{
		Name:           *in.Name,
		Description:    in.Description,
		CommissionRate: *in.CommissionRate,
		SignupURL:      in.SignupURL,
		IsDefault:      in.IsDefault != nil && *in.IsDefault,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if group.IsDefault {
			if err := tx.Model(&models.PartnerGroup{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&group).Error
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func UpdatePartnerGroup(db *gorm.DB, id uuid.UUID, in PartnerGroupInput) (*models.PartnerGroup, error) {
	if in.CommissionRate != nil && !ValidCommissionRate(*in.CommissionRate) {
		return nil, NewValidation(invalidRateMessage)
	}

	var group models.PartnerGroup
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&group, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Partner group not found")
			}
			return err
		}

		if in.IsDefault != nil && *in.IsDefault {
			if err := tx.Model(&models.PartnerGroup{}).
				Where("is_default = ? AND id <> ?", true, id).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		if in.Name != nil && *in.Name != "" {
			group.Name = *in.Name
		}
		if in.Description != nil {
			group.Description = in.Description
		}
		if in.CommissionRate != nil {
			group.CommissionRate = *in.CommissionRate
		}
		if in.SignupURL != nil {
			group.SignupURL = in.SignupURL
		}
		if in.IsDefault != nil {
			group.IsDefault = *in.IsDefault
		}
		return tx.Save(&group).Error
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// DeletePartnerGroup refuses to delete a group that still has affiliates.
func DeletePartnerGroup(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var group models.PartnerGroup
		if err := tx.First(&group, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("Partner group not found")
			}
			return err
		}

		var members int64
		if err := tx.Model(&models.Affiliate{}).Where("partner_group_id = ?", id).Count(&members).Error; err != nil {
			return err
		}
		if members > 0 {
			return NewConflict(fmt.Sprintf("Cannot delete partner group with %d active member(s)", members)).WithStatus(400)
		}

		return tx.Delete(&group).Error
	})
}

// AssignPartnerGroup moves an affiliate into a group, or back to the default
// rate when groupID is nil. Existing transactions keep their snapshotted rate.
func AssignPartnerGroup(db *gorm.DB, affiliateID uuid.UUID, groupID *uuid.UUID) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := db.First(&affiliate, "id = ?", affiliateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Affiliate not found")
		}
		return nil, err
	}

	if groupID != nil {
		var count int64
		if err := db.Model(&models.PartnerGroup{}).Where("id = ?", *groupID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, NewNotFound("Partner group not found")
		}
	}

	if err := db.Model(&affiliate).Update("partner_group_id", groupID).Error; err != nil {
		return nil, err
	}
	affiliate.PartnerGroupID = groupID
	return &affiliate, nil
}
