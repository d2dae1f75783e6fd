package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/services"
	"github.com/refferq/referral_api/websocket"
	"github.com/shopspring/decimal"
)

type TrackReferralRequest struct {
	ReferralCode string `json:"referralCode"`
	URL          string `json:"url"`
	Referrer     string `json:"referrer"`
	UserAgent    string `json:"userAgent"`
	Timestamp    string `json:"timestamp"`
}

type TrackConversionRequest struct {
	ReferralCode  string                 `json:"referralCode"`
	CustomerEmail string                 `json:"customerEmail" validate:"omitempty,email"`
	CustomerName  string                 `json:"customerName"`
	Amount        decimal.NullDecimal    `json:"amount"`
	Currency      string                 `json:"currency"`
	OrderID       string                 `json:"orderId"`
	Metadata      map[string]interface{} `json:"metadata"`
	URL           string                 `json:"url"`
	Timestamp     string                 `json:"timestamp"`
}

func affiliateInfo(a models.Affiliate) fiber.Map {
	return fiber.Map{"name": a.User.FullName, "code": a.ReferralCode}
}

func TrackReferral(c *fiber.Ctx) error {
	var req TrackReferralRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.UserAgent == "" {
		req.UserAgent = c.Get(fiber.HeaderUserAgent)
	}

	affiliate, err := services.TrackClick(database.DB, services.ClickEvent{
		ReferralCode: req.ReferralCode,
		URL:          req.URL,
		Referrer:     req.Referrer,
		UserAgent:    req.UserAgent,
		Timestamp:    req.Timestamp,
	})
	if err != nil {
		return respondError(c, err)
	}

	websocket.Publish(websocket.TrackingEvent{
		Type:          websocket.EventClick,
		AffiliateID:   affiliate.ID,
		AffiliateName: affiliate.User.FullName,
		ReferralCode:  affiliate.ReferralCode,
	})

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Referral tracked successfully",
		"affiliate": affiliateInfo(*affiliate),
	})
}

func TrackConversion(c *fiber.Ctx) error {
	var req TrackConversionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	amount := decimal.Zero
	if req.Amount.Valid {
		amount = req.Amount.Decimal
	}

	result, err := services.TrackConversion(database.DB, services.ConversionEvent{
		ReferralCode:  req.ReferralCode,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Amount:        amount,
		Currency:      req.Currency,
		OrderID:       req.OrderID,
		Metadata:      req.Metadata,
		URL:           req.URL,
		Timestamp:     req.Timestamp,
	})
	if err != nil {
		return respondError(c, err)
	}

	websocket.Publish(websocket.TrackingEvent{
		Type:          websocket.EventConversion,
		AffiliateID:   result.Affiliate.ID,
		AffiliateName: result.Affiliate.User.FullName,
		ReferralCode:  result.Affiliate.ReferralCode,
		ConversionID:  result.Conversion.ID,
		AmountCents:   result.Conversion.AmountCents,
		Currency:      result.Conversion.Currency,
		CustomerEmail: req.CustomerEmail,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Conversion tracked successfully",
		"conversion": fiber.Map{
			"id":       result.Conversion.ID,
			"amount":   decimal.New(result.Conversion.AmountCents, -2).InexactFloat64(),
			"currency": result.Conversion.Currency,
		},
		"affiliate": affiliateInfo(result.Affiliate),
	})
}
