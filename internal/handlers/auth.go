package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/models"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.accounts.Register(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.accounts.Login(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// GetMe returns the caller's profile, creating it for first-time users of an
// external identity provider.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	p, err := h.accounts.EnsureProfile(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.accounts.UpdateProfile(c.UserContext(), middleware.SessionFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "Token is required")
	}

	if err := h.accounts.RegisterDeviceToken(c.UserContext(), middleware.SessionFrom(c), req.Token); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
