package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/goalforge-api/internal/middleware"
)

// GetNotifications returns the newest notifications for the current user
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)

	list, err := h.notes.List(c.UserContext(), sess, queryInt(c, "limit", 0))
	if err != nil {
		return h.fail(c, err)
	}
	unread, err := h.notes.UnreadCount(c.UserContext(), sess)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": list,
		"unread":        unread,
	})
}

func (h *Handler) GetUnreadCount(c *fiber.Ctx) error {
	unread, err := h.notes.UnreadCount(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": unread})
}

// MarkNotificationRead marks a single notification as read
func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	if err := h.notes.MarkRead(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	marked, err := h.notes.MarkAllRead(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "marked": marked})
}

func (h *Handler) DeleteNotification(c *fiber.Ctx) error {
	if err := h.notes.Delete(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
