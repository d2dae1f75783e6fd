package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/services"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

func respondError(c *fiber.Ctx, err error) error {
	status, msg := services.ErrorResponse(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("🔥 Request failed")
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": msg})
}

// parseBody decodes and validates the JSON body into req.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return services.NewValidation("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return services.NewValidation(err.Error())
	}
	return nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, services.NewValidation("Invalid " + name)
	}
	return id, nil
}

func optionalUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, services.NewValidation("Invalid " + name)
	}
	return &id, nil
}
