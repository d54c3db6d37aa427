package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/services"
)

// GetEvents lists calendar events by start. ?today=1 returns today's events;
// ?from=&to= restricts to a range of calendar days, both inclusive.
func (h *Handler) GetEvents(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	if c.QueryBool("today") {
		events, err := h.planner.TodayEvents(c.UserContext(), sess)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(events)
	}

	var filter services.EventFilter
	if from, to := c.Query("from"), c.Query("to"); from != "" || to != "" {
		if from == "" || to == "" {
			return badRequest(c, "Both from and to are required")
		}
		start, err := productivity.ParseInstant("from", from, h.norm.Location())
		if err != nil || start == nil {
			return badRequest(c, "Invalid from date")
		}
		end, err := productivity.ParseInstant("to", to, h.norm.Location())
		if err != nil || end == nil {
			return badRequest(c, "Invalid to date")
		}
		if end.Before(*start) {
			return badRequest(c, "to must not be before from")
		}
		r := productivity.DayRange(start.In(h.norm.Location()), end.In(h.norm.Location()))
		filter.Range = &r
	}

	events, err := h.planner.ListEvents(c.UserContext(), sess, filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(events)
}

func (h *Handler) GetEvent(c *fiber.Ctx) error {
	ev, err := h.planner.GetEvent(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ev)
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var req models.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ev, err := h.planner.CreateEvent(c.UserContext(), middleware.SessionFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	var req models.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ev, err := h.planner.UpdateEvent(c.UserContext(), middleware.SessionFrom(c), c.Params("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ev)
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.planner.DeleteEvent(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
