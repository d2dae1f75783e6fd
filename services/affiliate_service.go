package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/refferq/referral_api/models"
	"gorm.io/gorm"
)

type AffiliateSummary struct {
	Affiliate        models.Affiliate     `json:"affiliate"`
	CommissionRate   float64              `json:"commission_rate"`
	UnpaidCommission int64                `json:"unpaid_commission_cents"`
	PaidCommission   int64                `json:"paid_commission_cents"`
	Transactions     []models.Transaction `json:"transactions"`
	Payouts          []models.Payout      `json:"payouts"`
}

func ListAffiliates(db *gorm.DB) ([]models.Affiliate, error) {
	var affiliates []models.Affiliate
	if err := db.Preload("User").Preload("PartnerGroup").Order("created_at desc").Find(&affiliates).Error; err != nil {
		return nil, err
	}
	return affiliates, nil
}

func SetUserStatus(db *gorm.DB, userID uuid.UUID, status models.UserStatus) error {
	if !status.Valid() {
		return NewValidation("Invalid user status")
	}
	result := db.Model(&models.User{}).Where("id = ?", userID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NewNotFound("User not found")
	}
	return nil
}

func sumCommission(db *gorm.DB, affiliateID uuid.UUID, status models.TransactionStatus) (int64, error) {
	var total int64
	err := db.Model(&models.Transaction{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, status).
		Select("COALESCE(SUM(commission_cents), 0)").
		Row().Scan(&total)
	return total, err
}

// GetAffiliateSummary is the affiliate's own view of its earnings.
func GetAffiliateSummary(db *gorm.DB, userID uuid.UUID) (*AffiliateSummary, error) {
	var affiliate models.Affiliate
	if err := db.Preload("User").Preload("PartnerGroup").Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Affiliate profile not found")
		}
		return nil, err
	}

	summary := AffiliateSummary{
		Affiliate:      affiliate,
		CommissionRate: ResolveCommissionRate(affiliate.PartnerGroup),
	}

	var err error
	if summary.UnpaidCommission, err = sumCommission(db, affiliate.ID, models.TransactionCompleted); err != nil {
		return nil, err
	}
	if summary.PaidCommission, err = sumCommission(db, affiliate.ID, models.TransactionPaid); err != nil {
		return nil, err
	}
	if err := db.Where("affiliate_id = ?", affiliate.ID).Order("created_at desc").Find(&summary.Transactions).Error; err != nil {
		return nil, err
	}
	if err := db.Where("affiliate_id = ?", affiliate.ID).Order("created_at desc").Find(&summary.Payouts).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// SyncAffiliateTotals rebuilds the running click, lead and revenue totals
// from the event log and returns how many affiliates were updated.
func SyncAffiliateTotals(db *gorm.DB) (int, error) {
	var affiliates []models.Affiliate
	if err := db.Select("id").Find(&affiliates).Error; err != nil {
		return 0, err
	}

	for _, a := range affiliates {
		var clicks, leads, revenue int64
		if err := db.Model(&models.Conversion{}).
			Where("affiliate_id = ? AND event_type = ?", a.ID, models.EventClick).
			Count(&clicks).Error; err != nil {
			return 0, err
		}
		if err := db.Model(&models.Referral{}).Where("affiliate_id = ?", a.ID).Count(&leads).Error; err != nil {
			return 0, err
		}
		if err := db.Model(&models.Conversion{}).
			Where("affiliate_id = ? AND event_type = ?", a.ID, models.EventPurchase).
			Select("COALESCE(SUM(amount_cents), 0)").
			Row().Scan(&revenue); err != nil {
			return 0, err
		}

		if err := db.Model(&models.Affiliate{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"total_clicks":        clicks,
			"total_leads":         leads,
			"total_revenue_cents": revenue,
		}).Error; err != nil {
			return 0, err
		}
	}
	return len(affiliates), nil
}
