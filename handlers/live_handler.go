package handlers

import (
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/refferq/referral_api/middleware"
	"github.com/refferq/referral_api/websocket"
	"github.com/rs/zerolog/log"
)

const liveUserLocal = "live_user_id"

// RequireWebSocketUpgrade runs after the admin checks and stashes the admin
// id for ServeLiveFeed, which has no access to the fiber context.
func RequireWebSocketUpgrade(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	c.Locals(liveUserLocal, userID.String())
	return c.Next()
}

func ServeLiveFeed(c *websocketcontrib.Conn) {
	userID, _ := uuid.Parse(c.Locals(liveUserLocal).(string))
	client := &websocket.Client{UserID: userID, Conn: c}

	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	// Admins only listen; reading keeps the connection alive until they leave.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			log.Debug().Err(err).Str("user_id", userID.String()).Msg("Live feed connection closed")
			return
		}
	}
}
