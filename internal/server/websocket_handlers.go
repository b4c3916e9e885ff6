package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"mdd/internal/featureflags"
	"mdd/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsTicketTTL = 30 * time.Second

func wsTicketKey(ticket string) string {
	return fmt.Sprintf("ws_ticket:%s", ticket)
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a single-use websocket ticket
// @Description Browsers cannot set headers on the upgrade request, so the feed socket authenticates with this ticket instead.
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expiresIn=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if !s.featureFlags.Enabled(featureflags.RealtimeFeed, userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Realtime feed is not enabled"))
	}
	if s.redis == nil || s.hub == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			fiber.NewError(fiber.StatusServiceUnavailable, "Realtime feed is unavailable"))
	}

	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), wsTicketKey(ticket), userID, wsTicketTTL).Err(); err != nil {
		return respondErr(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":    ticket,
		"expiresIn": int(wsTicketTTL.Seconds()),
	})
}

// WSTicketRequired consumes the ?ticket= query parameter and binds its user
// to the upgrade request. Tickets are deleted on first use.
func (s *Server) WSTicketRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired, fiber.ErrUpgradeRequired)
		}

		ticket := c.Query("ticket")
		if ticket == "" || s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("WebSocket ticket required"))
		}

		raw, err := s.redis.GetDel(c.UserContext(), wsTicketKey(ticket)).Result()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		c.Locals("userID", uint(userID))
		return c.Next()
	}
}

// FeedSocketHandler streams article.created events for the user's
// subscribed themes until either side closes.
func (s *Server) FeedSocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			slog.Warn("feed socket rejected",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		// ReadPump unregisters the client once the peer goes away.
		go client.WritePump()
		client.ReadPump()
	})
}
