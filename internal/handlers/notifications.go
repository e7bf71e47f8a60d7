package handlers

import (
	"github.com/arnold/civic-tasks-api/internal/middleware"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/arnold/civic-tasks-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetNotifications returns paginated notifications for the current user
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	page, limit := pagination(c)

	notifications, total, unread, err := h.Notifications.List(c.UserContext(), middleware.GetUserID(c), page, limit)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"page":          page,
		"limit":         limit,
	})
}

// MarkNotificationRead marks a single notification as read
func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	notifID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	if err := h.Notifications.MarkRead(c.UserContext(), middleware.GetUserID(c), notifID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	updated, err := h.Notifications.MarkAllRead(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated": updated})
}

func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	var req models.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	prefs, err := h.Notifications.UpdatePreferences(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(prefs)
}

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "Token is required")
	}

	if err := h.Notifications.RegisterDeviceToken(c.UserContext(), middleware.GetUserID(c), req.Token); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type broadcastRequest struct {
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	Type           models.NotificationType `json:"type"`
	NeighborhoodID string                  `json:"neighborhoodId"`
}

// Broadcast sends an operator announcement to everyone or to one neighborhood.
func (h *Handler) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "Title is required")
	}
	if req.Type == "" {
		req.Type = models.NotificationSystem
	}
	if _, err := services.Allowed(models.NotificationPreferences{}, req.Type); err != nil {
		return h.fail(c, err)
	}

	in := models.NotificationInput{
		Title:    req.Title,
		Message:  req.Message,
		Type:     req.Type,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelPush},
	}

	var sent []*models.Notification
	var err error
	if req.NeighborhoodID == "" {
		sent, err = h.Notifications.NotifyAllUsers(c.UserContext(), in)
	} else {
		id, parseErr := uuid.Parse(req.NeighborhoodID)
		if parseErr != nil {
			return badRequest(c, "Invalid neighborhood ID")
		}
		sent, err = h.Notifications.NotifyNeighborhoodEvent(c.UserContext(), id, in)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"sent": len(sent)})
}
