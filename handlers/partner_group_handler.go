package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/services"
)

type PartnerGroupRequest struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	CommissionRate *float64 `json:"commissionRate"`
	SignupURL      *string  `json:"signupUrl" validate:"omitempty,url"`
	IsDefault      *bool    `json:"isDefault"`
}

func (r PartnerGroupRequest) input() services.PartnerGroupInput {
	return services.PartnerGroupInput{
		Name:           r.Name,
		Description:    r.Description,
		CommissionRate: r.CommissionRate,
		SignupURL:      r.SignupURL,
		IsDefault:      r.IsDefault,
	}
}

func ListPartnerGroups(c *fiber.Ctx) error {
	groups, err := services.ListPartnerGroups(database.DB)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "groups": groups})
}

func CreatePartnerGroup(c *fiber.Ctx) error {
	var req PartnerGroupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	group, err := services.CreatePartnerGroup(database.DB, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "group": group})
}

func UpdatePartnerGroup(c *fiber.Ctx) error {
	id, err := uuidParam(c, "groupId")
	if err != nil {
		return respondError(c, err)
	}
	var req PartnerGroupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	group, err := services.UpdatePartnerGroup(database.DB, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "group": group})
}

func DeletePartnerGroup(c *fiber.Ctx) error {
	id, err := uuidParam(c, "groupId")
	if err != nil {
		return respondError(c, err)
	}
	if err := services.DeletePartnerGroup(database.DB, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Partner group deleted"})
}
