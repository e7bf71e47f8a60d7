package handlers

import (
	"log/slog"
	"strconv"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/config"
	"github.com/arnold/civic-tasks-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler carries the dependencies every route needs.
type Handler struct {
	Config        *config.Config
	DB            *gorm.DB
	Tasks         *services.TaskService
	Templates     *services.TemplateService
	Badges        *services.BadgeService
	Leaderboard   *services.LeaderboardService
	Notifications *services.NotificationService
}

// fail writes err with the status its type maps to. Unclassified errors are
// logged and, in production, reported without their message.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		slog.Error("Request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		if h.Config.IsProduction() {
			msg = "Internal server error"
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func pagination(c *fiber.Ctx) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}
