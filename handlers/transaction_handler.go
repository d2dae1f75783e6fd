package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/middleware"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/notifications"
	"github.com/refferq/referral_api/services"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	ReferralID    string          `json:"referralId" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Description   *string         `json:"description"`
	InvoiceID     *string         `json:"invoiceId"`
	PaymentMethod *string         `json:"paymentMethod"`
	PaidAt        *time.Time      `json:"paidAt"`
}

type UpdateTransactionRequest struct {
	Status        *string    `json:"status"`
	Description   *string    `json:"description"`
	InvoiceID     *string    `json:"invoiceId"`
	PaymentMethod *string    `json:"paymentMethod"`
	PaidAt        *time.Time `json:"paidAt"`
}

type TransactionResponse struct {
	models.Transaction
	Referral  *referralSummary  `json:"referral,omitempty"`
	Affiliate *affiliateSummary `json:"affiliate,omitempty"`
}

type referralSummary struct {
	ID        uuid.UUID `json:"id"`
	LeadName  string    `json:"lead_name"`
	LeadEmail string    `json:"lead_email"`
}

type affiliateSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referral_code"`
	PartnerGroup string    `json:"partner_group"`
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	resp := TransactionResponse{Transaction: t}
	if t.Referral.ID != uuid.Nil {
		resp.Referral = &referralSummary{ID: t.Referral.ID, LeadName: t.Referral.LeadName, LeadEmail: t.Referral.LeadEmail}
	}
	if t.Affiliate.ID != uuid.Nil {
		group := "Default"
		if t.Affiliate.PartnerGroup != nil {
			group = t.Affiliate.PartnerGroup.Name
		}
		resp.Affiliate = &affiliateSummary{
			ID:           t.Affiliate.ID,
			Name:         t.Affiliate.User.FullName,
			Email:        t.Affiliate.User.Email,
			ReferralCode: t.Affiliate.ReferralCode,
			PartnerGroup: group,
		}
	}
	return resp
}

func ListTransactions(c *fiber.Ctx) error {
	referralID, err := optionalUUIDQuery(c, "referralId")
	if err != nil {
		return respondError(c, err)
	}
	affiliateID, err := optionalUUIDQuery(c, "affiliateId")
	if err != nil {
		return respondError(c, err)
	}

	transactions, err := services.ListTransactions(database.DB, services.TransactionFilter{
		ReferralID:  referralID,
		AffiliateID: affiliateID,
	})
	if err != nil {
		return respondError(c, err)
	}

	out := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionResponse(t))
	}
	return c.JSON(fiber.Map{"success": true, "transactions": out})
}

func CreateTransaction(c *fiber.Ctx) error {
	var req CreateTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, services.NewValidation("Referral ID and amount are required"))
	}

	var createdBy *uuid.UUID
	if adminID, err := middleware.CurrentUserID(c); err == nil {
		createdBy = &adminID
	}

	txn, err := services.CreateTransaction(database.DB, services.CreateTransactionInput{
		ReferralID:    uuid.MustParse(req.ReferralID),
		Amount:        req.Amount,
		Description:   req.Description,
		InvoiceID:     req.InvoiceID,
		PaymentMethod: req.PaymentMethod,
		PaidAt:        req.PaidAt,
		CreatedBy:     createdBy,
	})
	if err != nil {
		return respondError(c, err)
	}

	var affiliate models.Affiliate
	if database.DB.Preload("User").First(&affiliate, "id = ?", txn.AffiliateID).Error == nil {
		subject, body := notifications.CommissionEarnedEmail(affiliate.User, *txn)
		go notifications.SendEmail(affiliate.User.FullName, affiliate.User.Email, subject, body)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "transaction": txn})
}

func UpdateTransaction(c *fiber.Ctx) error {
	id, err := uuidParam(c, "transactionId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	in := services.UpdateTransactionInput{
		Description:   req.Description,
		InvoiceID:     req.InvoiceID,
		PaymentMethod: req.PaymentMethod,
		PaidAt:        req.PaidAt,
	}
	if req.Status != nil {
		status := models.TransactionStatus(*req.Status)
		in.Status = &status
	}

	txn, err := services.UpdateTransaction(database.DB, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "transaction": txn})
}

func DeleteTransaction(c *fiber.Ctx) error {
	id, err := uuidParam(c, "transactionId")
	if err != nil {
		return respondError(c, err)
	}
	if err := services.DeleteTransaction(database.DB, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Transaction deleted"})
}
