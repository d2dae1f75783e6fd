package services

import (
	"github.com/refferq/referral_api/models"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate applies to affiliates without a partner group.
var DefaultCommissionRate = 0.20

var hundred = decimal.NewFromInt(100)

type Commission struct {
	AmountCents     int64   `json:"amount_cents"`
	CommissionCents int64   `json:"commission_cents"`
	Rate            float64 `json:"commission_rate"`
}

// AmountToCentsFloor is used when an admin records a transaction.
func AmountToCentsFloor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Floor().IntPart()
}

// AmountToCentsRound is used by conversion tracking.
func AmountToCentsRound(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func ResolveCommissionRate(group *models.PartnerGroup) float64 {
	if group != nil {
		return group.CommissionRate
	}
	return DefaultCommissionRate
}

// CalculateCommission returns floor(amountCents * rate).
func CalculateCommission(amountCents int64, rate float64) int64 {
	return decimal.NewFromInt(amountCents).Mul(decimal.NewFromFloat(rate)).Floor().IntPart()
}

// ComputeCommission snapshots the rate in effect now. Callers persist the
// returned rate and never derive it again from the group.
func ComputeCommission(amount decimal.Decimal, group *models.PartnerGroup) Commission {
	amountCents := AmountToCentsFloor(amount)
	rate := ResolveCommissionRate(group)
	return Commission{
		AmountCents:     amountCents,
		CommissionCents: CalculateCommission(amountCents, rate),
		Rate:            rate,
	}
}

func ValidCommissionRate(rate float64) bool {
	return rate > 0 && rate <= 1
}
