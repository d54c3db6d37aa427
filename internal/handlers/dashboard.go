package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
)

// GetDashboard returns the top goals, today's agenda and the summary counters.
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	dash, err := h.planner.Dashboard(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dash)
}
