package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/refferq/referral_api/services"
	"github.com/rs/zerolog/log"
)

// NewApp builds the Fiber app with middleware and every route registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Refferq",
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code, msg := services.ErrorResponse(err)
			if e, ok := err.(*fiber.Error); ok {
				code, msg = e.Code, e.Message
			}

			log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("[ERROR]")
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   msg,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-API-Key, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	PublicRoutes(app)
	AuthRoutes(app)
	AffiliateRoutes(app)
	AdminRoutes(app)

	return app
}
