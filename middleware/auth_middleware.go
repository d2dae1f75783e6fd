package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/refferq/referral_api/configs"
	"github.com/refferq/referral_api/database"
	"github.com/refferq/referral_api/models"
	"github.com/refferq/referral_api/services"
)

const (
	AuthCookieName   = "auth-token"
	APIKeyHeader     = "X-API-Key"
	integrationLocal = "integration"
)

// Protected accepts the session token as a bearer header or as the
// auth-token cookie set at login.
func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		TokenLookup:  "header:Authorization,cookie:" + AuthCookieName,
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"success": false, "error": "Authentication required"})
}

func claims(c *fiber.Ctx) jwt.MapClaims {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil
	}
	mapClaims, _ := token.Claims.(jwt.MapClaims)
	return mapClaims
}

// CurrentUserID returns the user id carried by the session token.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := claims(c)["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid user id in token")
	}
	return id, nil
}

func CurrentRole(c *fiber.Ctx) (models.Role, bool) {
	raw, _ := claims(c)["role"].(string)
	return models.ParseRole(raw)
}

func requireRole(role models.Role, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := CurrentRole(c)
		if !ok || current != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   message,
			})
		}
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return requireRole(models.RoleAdmin, "Access denied. Admin role required.")
}

func AffiliateRequired() fiber.Handler {
	return requireRole(models.RoleAffiliate, "Access denied. Affiliate role required.")
}

// APIKeyRequired guards the public tracking endpoints. The active
// integration is stored in Locals for the handler.
func APIKeyRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		integration, err := services.ValidateAPIKey(database.DB, c.Get(APIKeyHeader))
		if err != nil {
			status, msg := services.ErrorResponse(err)
			return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
		}
		c.Locals(integrationLocal, integration)
		return c.Next()
	}
}

func CurrentIntegration(c *fiber.Ctx) *models.IntegrationSettings {
	integration, _ := c.Locals(integrationLocal).(*models.IntegrationSettings)
	return integration
}
