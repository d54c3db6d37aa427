package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/services"
)

// GetGoals lists the caller's goals, newest first. ?category= and
// ?status=active narrow the result.
func (h *Handler) GetGoals(c *fiber.Ctx) error {
	filter := services.GoalFilter{
		Category:   models.GoalCategory(c.Query("category")),
		ActiveOnly: c.Query("status") == string(models.GoalActive) || c.QueryBool("active"),
	}
	goals, err := h.planner.ListGoals(c.UserContext(), middleware.SessionFrom(c), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(goals)
}

func (h *Handler) GetGoal(c *fiber.Ctx) error {
	goal, err := h.planner.GetGoal(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	goal, err := h.planner.CreateGoal(c.UserContext(), middleware.SessionFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) UpdateGoal(c *fiber.Ctx) error {
	var req models.UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	goal, err := h.planner.UpdateGoal(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) UpdateGoalProgress(c *fiber.Ctx) error {
	var req struct {
		Progress *int `json:"progress"`
	}
	if err := c.BodyParser(&req); err != nil || req.Progress == nil {
		return badRequest(c, "Progress is required")
	}

	goal, err := h.planner.UpdateGoalProgress(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), *req.Progress)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) DeleteGoal(c *fiber.Ctx) error {
	if err := h.planner.DeleteGoal(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateGoalEvent puts the goal's deadline on the calendar.
func (h *Handler) CreateGoalEvent(c *fiber.Ctx) error {
	ev, err := h.planner.CreateEventFromGoal(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}
