package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
)

// GetJournal returns a chronological timeline of the user's completions.
func (h *Handler) GetJournal(c *fiber.Ctx) error {
	entries, err := h.planner.Journal(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entries)
}
