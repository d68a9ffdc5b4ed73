package handlers

import (
	"log"
	"strconv"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebSocketHandler owns one collaboration connection: it registers the
// conn, acknowledges it, and routes inbound frames until the socket
// drops.
func WebSocketHandler(tripService *services.TripService) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID := c.Locals("user_id").(string)
		userName := c.Locals("username").(string)

		connID := uuid.New().String()
		Manager.Register(connID, userID, userName, c)

		defer func() {
			roomID, roster := Manager.Unregister(connID)
			if roomID != "" {
				Manager.Broadcast(roomID, models.Frame{Type: models.FrameUserLeft, UserID: userID}, "")
				Manager.Broadcast(roomID, models.Frame{Type: models.FrameRoomUsers, Users: roster}, "")
			}
			c.Close()
		}()

		Manager.Send(connID, models.Frame{Type: models.FrameConnectionEstablished})

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					log.Printf("ws read: %v", err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}
			HandleFrame(connID, userID, userName, msg, tripService)
		}
	})
}

// WSUpgradeMiddleware gates /ws to genuine upgrade requests.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthMiddleware verifies the JWT before the upgrade. The credential
// arrives as a `token` query parameter on the connection URL, or as a
// bearer header on plain REST calls.
func AuthMiddleware(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	// claims["user_id"] comes back as float64 from JSON
	uid, ok := claims["user_id"].(float64)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	c.Locals("user_id", strconv.Itoa(int(uid)))

	if u, ok := claims["username"].(string); ok {
		c.Locals("username", u)
	} else {
		c.Locals("username", "")
	}

	return c.Next()
}

// SendError reports a user-facing failure on one connection without
// closing it.
func SendError(connID, message string) {
	Manager.Send(connID, models.Frame{Type: models.FrameError, ErrorMessage: message})
}
