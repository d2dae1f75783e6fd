package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/refferq/referral_api/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultCurrency     = "USD"
	unknownCustomerName = "Unknown Customer"
)

type ClickEvent struct {
	ReferralCode string
	URL          string
	Referrer     string
	UserAgent    string
	Timestamp    string
}

type ConversionEvent struct {
	ReferralCode  string
	CustomerEmail string
	CustomerName  string
	Amount        decimal.Decimal
	Currency      string
	OrderID       string
	Metadata      map[string]interface{}
	URL           string
	Timestamp     string
}

type ConversionResult struct {
	Conversion models.Conversion
	Referral   *models.Referral
	Affiliate  models.Affiliate
}

// ValidateAPIKey returns the active integration owning publicKey.
func ValidateAPIKey(db *gorm.DB, publicKey string) (*models.IntegrationSettings, error) {
	if publicKey == "" {
		return nil, NewAuthentication("API key is required")
	}
	var integration models.IntegrationSettings
	if err := db.Where("public_key = ? AND is_active = ?", publicKey, true).First(&integration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewAuthentication("Invalid or inactive API key")
		}
		return nil, err
	}
	return &integration, nil
}

// resolveTrackedAffiliate loads the affiliate behind a referral code and
// checks that its owner account is active.
func resolveTrackedAffiliate(db *gorm.DB, code string) (*models.Affiliate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, NewValidation("Referral code is required")
	}

	var affiliate models.Affiliate
	if err := db.Preload("User").Where("referral_code = ?", code).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Invalid referral code")
		}
		return nil, err
	}
	if !affiliate.User.IsActive() {
		return nil, NewAuthorization("Affiliate is not active")
	}
	return &affiliate, nil
}

func marshalMetadata(m map[string]interface{}) (datatypes.JSON, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func mergeMetadata(existing datatypes.JSON, extra map[string]interface{}) (datatypes.JSON, error) {
	merged := map[string]interface{}{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return nil, err
		}
	}
	for k, v := range extra {
		merged[k] = v
	}
	return marshalMetadata(merged)
}

func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// TrackClick records a CLICK event for the affiliate and bumps its click total.
func TrackClick(db *gorm.DB, ev ClickEvent) (*models.Affiliate, error) {
	affiliate, err := resolveTrackedAffiliate(db, ev.ReferralCode)
	if err != nil {
		return nil, err
	}

	timestamp := ev.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	metadata, err := marshalMetadata(map[string]interface{}{
		"url":       nonEmpty(ev.URL),
		"referrer":  nonEmpty(ev.Referrer),
		"userAgent": nonEmpty(ev.UserAgent),
		"timestamp": timestamp,
	})
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		click := models.Conversion{
			AffiliateID:   affiliate.ID,
			EventType:     models.EventClick,
			Currency:      DefaultCurrency,
			Status:        models.ConversionApproved,
			EventMetadata: metadata,
		}
		if err := tx.Create(&click).Error; err != nil {
			return err
		}
		return tx.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
			Update("total_clicks", gorm.Expr("total_clicks + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	affiliate.TotalClicks++

	log.Info().
		Str("affiliate_id", affiliate.ID.String()).
		Str("referral_code", affiliate.ReferralCode).
		Str("url", ev.URL).
		Msg("✅ Referral click tracked")
	return affiliate, nil
}

// TrackConversion attributes a purchase to the affiliate behind the code. The
// lead is created on the first conversion for its email; a PENDING lead is
// approved.
func TrackConversion(db *gorm.DB, ev ConversionEvent) (*ConversionResult, error) {
	affiliate, err := resolveTrackedAffiliate(db, ev.ReferralCode)
	if err != nil {
		return nil, err
	}
	if ev.Amount.IsNegative() {
		return nil, NewValidation("Amount must not be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(ev.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	amountCents := AmountToCentsRound(ev.Amount)
	email := strings.ToLower(strings.TrimSpace(ev.CustomerEmail))

	result := &ConversionResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		if email != "" {
			referral, err := upsertConversionReferral(tx, affiliate, email, ev)
			if err != nil {
				return err
			}
			result.Referral = referral
		}

		timestamp := ev.Timestamp
		if timestamp == "" {
			timestamp = time.Now().UTC().Format(time.RFC3339)
		}
		eventMeta := map[string]interface{}{
			"orderId":   nonEmpty(ev.OrderID),
			"url":       nonEmpty(ev.URL),
			"timestamp": timestamp,
		}
		for k, v := range ev.Metadata {
			eventMeta[k] = v
		}
		metadata, err := marshalMetadata(eventMeta)
		if err != nil {
			return err
		}

		conversion := models.Conversion{
			AffiliateID:   affiliate.ID,
			EventType:     models.EventPurchase,
			AmountCents:   amountCents,
			Currency:      currency,
			Status:        models.ConversionPending,
			EventMetadata: metadata,
		}
		if result.Referral != nil {
			conversion.ReferralID = &result.Referral.ID
		}
		if err := tx.Create(&conversion).Error; err != nil {
			return err
		}
		result.Conversion = conversion

		return tx.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
			Update("total_revenue_cents", gorm.Expr("total_revenue_cents + ?", amountCents)).Error
	})
	if err != nil {
		return nil, err
	}
	affiliate.TotalRevenueCents += amountCents
	result.Affiliate = *affiliate

	log.Info().
		Str("conversion_id", result.Conversion.ID.String()).
		Str("affiliate_id", affiliate.ID.String()).
		Int64("amount_cents", amountCents).
		Str("currency", currency).
		Msg("✅ Conversion tracked successfully")
	return result, nil
}

func upsertConversionReferral(tx *gorm.DB, affiliate *models.Affiliate, email string, ev ConversionEvent) (*models.Referral, error) {
	var referral models.Referral
	err := tx.Where("lead_email = ? AND affiliate_id = ?", email, affiliate.ID).First(&referral).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name := strings.TrimSpace(ev.CustomerName)
		if name == "" {
			name = unknownCustomerName
		}
		metadata, err := marshalMetadata(ev.Metadata)
		if err != nil {
			return nil, err
		}
		referral = models.Referral{
			AffiliateID: affiliate.ID,
			LeadName:    name,
			LeadEmail:   email,
			Status:      models.ReferralApproved,
			Metadata:    metadata,
		}
		if err := tx.Omit("Affiliate").Create(&referral).Error; err != nil {
			return nil, err
		}
		if err := tx.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
			Update("total_leads", gorm.Expr("total_leads + ?", 1)).Error; err != nil {
			return nil, err
		}
		affiliate.TotalLeads++
	case err != nil:
		return nil, err
	case referral.Status == models.ReferralPending:
		metadata, err := mergeMetadata(referral.Metadata, ev.Metadata)
		if err != nil {
			return nil, err
		}
		referral.Status = models.ReferralApproved
		referral.Metadata = metadata
		if err := tx.Model(&referral).Updates(map[string]interface{}{
			"status":   referral.Status,
			"metadata": referral.Metadata,
		}).Error; err != nil {
			return nil, err
		}
	}
	return &referral, nil
}
