package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/notifications"
	"github.com/refferq/referral_api/services"
)

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignGroupRequest struct {
	PartnerGroupID *string `json:"partnerGroupId"`
}

func GetDashboardStats(c *fiber.Ctx) error {
	stats, err := services.GetDashboardStats(database.DB)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

func ListAffiliates(c *fiber.Ctx) error {
	affiliates, err := services.ListAffiliates(database.DB)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "affiliates": affiliates})
}

func UpdateUserStatus(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateUserStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	status := models.UserStatus(req.Status)
	if err := services.SetUserStatus(database.DB, userID, status); err != nil {
		return respondError(c, err)
	}

	if status == models.UserStatusActive {
		var user models.User
		if database.DB.First(&user, "id = ?", userID).Error == nil {
			go notifications.SendEmail(user.FullName, user.Email, "Your account is active",
				"<h1>Welcome aboard</h1><p>Your affiliate account has been approved. You can now log in.</p>")
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "User status updated", "status": status})
}

func AssignAffiliateGroup(c *fiber.Ctx) error {
	affiliateID, err := uuidParam(c, "affiliateId")
	if err != nil {
		return respondError(c, err)
	}
	var req AssignGroupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	var groupID *uuid.UUID
	if req.PartnerGroupID != nil && *req.PartnerGroupID != "" {
		id, err := uuid.Parse(*req.PartnerGroupID)
		if err != nil {
			return badRequest(c, "Invalid partnerGroupId")
		}
		groupID = &id
	}

	affiliate, err := services.AssignPartnerGroup(database.DB, affiliateID, groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "affiliate": affiliate})
}
