package services

import (
	"encoding/json"
	"strconv"

	"github.com/refferq/referral_api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalAffiliates          int64 `json:"total_affiliates"`
	TotalUsers               int64 `json:"total_users"`
	TotalReferrals           int64 `json:"total_referrals"`
	TotalConversions         int64 `json:"total_conversions"`
	PendingReferrals         int64 `json:"pending_referrals"`
	ApprovedReferrals        int64 `json:"approved_referrals"`
	TotalRevenue             int64 `json:"total_revenue_cents"`
	TotalEstimatedRevenue    int64 `json:"total_estimated_revenue_cents"`
	TotalEstimatedCommission int64 `json:"total_estimated_commission_cents"`
	PendingPayouts           int64 `json:"pending_payouts"`
	UnpaidCommission         int64 `json:"unpaid_commission_cents"`
}

// estimatedValue reads metadata.estimated_value, which the admin UI stores
// either as a number or a numeric string.
func estimatedValue(raw []byte) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return decimal.Zero
	}
	switch v := meta["estimated_value"].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return decimal.NewFromFloat(f)
		}
	}
	return decimal.Zero
}

func GetDashboardStats(db *gorm.DB) (*DashboardStats, error) {
	var stats DashboardStats

	counts := []struct {
		model interface{}
		where []interface{}
		dest  *int64
	}{
		{&models.Affiliate{}, nil, &stats.TotalAffiliates},
		{&models.User{}, nil, &stats.TotalUsers},
		{&models.Referral{}, nil, &stats.TotalReferrals},
		{&models.Conversion{}, nil, &stats.TotalConversions},
		{&models.Referral{}, []interface{}{"status = ?", models.ReferralPending}, &stats.PendingReferrals},
		{&models.Referral{}, []interface{}{"status = ?", models.ReferralApproved}, &stats.ApprovedReferrals},
		{&models.Payout{}, []interface{}{"status = ?", models.PayoutPending}, &stats.PendingPayouts},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&models.Conversion{}).Select("COALESCE(SUM(amount_cents), 0)").Row().Scan(&stats.TotalRevenue); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Transaction{}).
		Where("status = ?", models.TransactionCompleted).
		Select("COALESCE(SUM(commission_cents), 0)").
		Row().Scan(&stats.UnpaidCommission); err != nil {
		return nil, err
	}

	var referrals []models.Referral
	if err := db.Preload("Affiliate.PartnerGroup").Find(&referrals).Error; err != nil {
		return nil, err
	}
	for _, ref := range referrals {
		valueCents := estimatedValue(ref.Metadata).Mul(hundred).IntPart()
		rate := ResolveCommissionRate(ref.Affiliate.PartnerGroup)
		stats.TotalEstimatedRevenue += valueCents
		stats.TotalEstimatedCommission += CalculateCommission(valueCents, rate)
	}

	return &stats, nil
}
