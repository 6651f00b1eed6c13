package server

import (
	"context"
	"log/slog"
	"time"

	"thesisrepo/internal/cache"
	"thesisrepo/internal/middleware"
	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsPingInterval = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a single-use ticket for the notifications socket
// @Tags realtime
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Realtime notifications are unavailable",
		})
	}

	ticket := uuid.NewString()
	if err := cache.StoreWSTicket(c.UserContext(), s.redis, ticket, currentUserID(c)); err != nil {
		return respondWithAppError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}

// wsTicketAuth authenticates a WebSocket handshake with a ticket from
// IssueWSTicket. Browsers cannot attach an Authorization header to the
// handshake, and tokens never travel in the query string.
func (s *Server) wsTicketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, ok := cache.ConsumeWSTicket(c.UserContext(), s.redis, c.Query("ticket"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}
		c.Locals("userID", userID)
		return c.Next()
	}
}

// NotificationsSocket streams the caller's notification channel, such as
// moderation decisions on their comments. The first frame is
// {"type":"connected"} once the subscription is live.
func (s *Server) NotificationsSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.ActiveWebSockets.Inc()
		defer observability.ActiveWebSockets.Dec()

		userID, ok := conn.Locals("userID").(uint)
		if !ok || s.redis == nil {
			_ = conn.Close()
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := s.redis.Subscribe(ctx, notifications.UserChannel(userID))
		defer func() { _ = sub.Close() }()
		if _, err := sub.Receive(ctx); err != nil {
			middleware.Logger.Warn("notification subscribe failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			_ = conn.Close()
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`)); err != nil {
			return
		}

		// Clients only listen; reading surfaces the close frame.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	})
}
