// Package handlers exposes the planner over HTTP and websockets.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/metrics"
	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/services"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

type Handler struct {
	planner  *services.Planner
	notes    *services.Notifications
	accounts *services.Accounts
	store    store.Store
	norm     *productivity.Normalizer
	verifier middleware.TokenVerifier
	stats    *metrics.Metrics
	log      *zap.Logger
}

type Deps struct {
	Planner       *services.Planner
	Notifications *services.Notifications
	Accounts      *services.Accounts
	Store         store.Store
	Normalizer    *productivity.Normalizer
	Verifier      middleware.TokenVerifier
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		planner:  d.Planner,
		notes:    d.Notifications,
		accounts: d.Accounts,
		store:    d.Store,
		norm:     d.Normalizer,
		verifier: d.Verifier,
		stats:    d.Metrics,
		log:      log.With(zap.String("component", "http")),
	}
}

// Verifier authenticates requests for the protected routes.
func (h *Handler) Verifier() middleware.TokenVerifier {
	return h.verifier
}

// Metrics is nil when instrumentation is off.
func (h *Handler) Metrics() *metrics.Metrics {
	return h.stats
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// fail maps service errors onto HTTP responses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var verr *productivity.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, session.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNoDate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Item has no date to place on the calendar"})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrPasswordTooShort), errors.Is(err, services.ErrEmailPasswordNeeded):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPasswordAuthOff):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	h.log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
