package handlers

import (
	"github.com/arnold/civic-tasks-api/internal/middleware"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

func (h *Handler) GetBadges(c *fiber.Ctx) error {
	badges, err := h.Badges.GetAllBadgesWithStatus(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(badges)
}

type createBadgeRequest struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Icon         string                   `json:"icon"`
	Requirements models.BadgeRequirements `json:"requirements"`
}

func (h *Handler) CreateBadge(c *fiber.Ctx) error {
	var req createBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	badge := &models.Badge{
		Name:         req.Name,
		Description:  req.Description,
		Icon:         req.Icon,
		Requirements: datatypes.NewJSONType(req.Requirements),
	}
	if err := h.Badges.CreateBadge(c.UserContext(), badge); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(badge)
}
