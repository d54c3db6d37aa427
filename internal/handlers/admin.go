package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/models"
)

// GetUsers lists every user with goal, task and event counts. Admins only.
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	users, err := h.accounts.ListUsers(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) SetUserRole(c *fiber.Ctx) error {
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.accounts.SetRole(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req.Role)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}
