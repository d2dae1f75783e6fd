package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/refferq/referral_api/configs"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/middleware"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/notifications"
	"github.com/refferq/referral_api/services"
)

type RegisterRequest struct {
	FullName string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID           string            `json:"id"`
	FullName     string            `json:"name"`
	Email        string            `json:"email"`
	Role         models.Role       `json:"role"`
	Status       models.UserStatus `json:"status"`
	ReferralCode string            `json:"referral_code,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func toUserResponse(user *models.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
	if user.Affiliate != nil {
		resp.ReferralCode = user.Affiliate.ReferralCode
	}
	return resp
}

func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	role := models.RoleAffiliate
	if req.Role != "" {
		parsed, ok := models.ParseRole(req.Role)
		if !ok {
			return badRequest(c, "Invalid role")
		}
		role = parsed
	}

	user, err := services.RegisterUser(database.DB, services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return respondError(c, err)
	}

	go notifications.SendEmail(user.FullName, user.Email, "Welcome!",
		"<h1>Welcome!</h1><p>Thank you for registering. Your account will be reviewed shortly.</p>")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful",
		"user":    toUserResponse(user),
	})
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := services.Authenticate(database.DB, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, expiresAt, err := services.IssueToken(user, config.Config("JWT_SECRET"), time.Now())
	if err != nil {
		return respondError(c, services.NewInternal("Could not login", err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    toUserResponse(user),
	})
}

func LogoutUser(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"success": true})
}

func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Authentication required"})
	}

	var user models.User
	if err := database.DB.Preload("Affiliate").First(&user, "id = ?", userID).Error; err != nil {
		return respondError(c, services.NewNotFound("User not found"))
	}
	return c.JSON(fiber.Map{"success": true, "user": toUserResponse(&user)})
}
