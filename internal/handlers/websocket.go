package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

const EventSnapshot = "snapshot"

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type string      `json:"type"`
	Kind models.Kind `json:"kind"`
	Data interface{} `json:"data"`
}

// WebSocketUpgrade is the middleware that checks the upgrade request and
// authenticates it. Browsers cannot set headers on a websocket handshake, so
// the token may come from ?token= as well.
func (h *Handler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		sess, err := h.verifier.Verify(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		if !models.Kind(c.Params("kind")).Valid() {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown collection",
			})
		}

		middleware.SetSession(c, sess)
		return c.Next()
	}
}

// HandleWebSocket streams one collection of the caller. The current contents
// are sent on connect and again after every change.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	sess, ok := c.Locals(middleware.SessionKey).(session.Session)
	if !ok || !sess.Valid() {
		c.Close()
		return
	}
	kind := models.Kind(c.Params("kind"))
	log := h.log.With(zap.String("owner", sess.OwnerID), zap.String("kind", string(kind)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := h.store.Subscribe(ctx, sess.OwnerID, kind)
	if err != nil {
		log.Error("subscribe failed", zap.Error(err))
		c.Close()
		return
	}
	defer stream.Stop()
	h.stats.WSOpened()
	defer h.stats.WSClosed()
	log.Debug("ws subscribed")

	// Reads only detect the client going away; clients send keepalives.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		recs, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, store.ErrStreamClosed) {
				log.Warn("stream ended", zap.Error(err))
			}
			break
		}
		if err := c.WriteJSON(WSEvent{Type: EventSnapshot, Kind: kind, Data: h.normalize(kind, recs)}); err != nil {
			log.Debug("ws write failed", zap.Error(err))
			break
		}
	}
	log.Debug("ws closed")
}

func (h *Handler) normalize(kind models.Kind, recs []models.Record) interface{} {
	switch kind {
	case models.KindGoals:
		return h.norm.Goals(recs)
	case models.KindTasks:
		return h.norm.Tasks(recs)
	case models.KindEvents:
		return h.norm.Events(recs)
	case models.KindNotifications:
		return h.norm.Notifications(recs)
	}
	return recs
}
