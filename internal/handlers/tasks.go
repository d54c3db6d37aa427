package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/services"
)

// GetTasks lists tasks. ?goalId= keeps one goal's tasks, ?due=today keeps
// the unfinished ones due today.
func (h *Handler) GetTasks(c *fiber.Ctx) error {
	filter := services.TaskFilter{
		GoalID:   c.Query("goalId"),
		DueToday: c.Query("due") == "today",
	}
	tasks, err := h.planner.ListTasks(c.UserContext(), middleware.SessionFrom(c), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(tasks)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	task, err := h.planner.GetTask(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.planner.CreateTask(c.UserContext(), middleware.SessionFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	var req models.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.planner.UpdateTask(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) UpdateTaskStatus(c *fiber.Ctx) error {
	var req struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return badRequest(c, "Status is required")
	}

	task, err := h.planner.UpdateTaskStatus(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	if err := h.planner.DeleteTask(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) AddSubtask(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.planner.AddSubtask(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req.Title)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) ToggleSubtask(c *fiber.Ctx) error {
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.planner.SetSubtaskCompleted(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), c.Params("subtaskId"), req.Completed)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(task)
}

// CreateTaskEvent puts the task's due date on the calendar.
func (h *Handler) CreateTaskEvent(c *fiber.Ctx) error {
	ev, err := h.planner.CreateEventFromTask(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}
