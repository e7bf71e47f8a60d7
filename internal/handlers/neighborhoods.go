package handlers

import (
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/arnold/civic-tasks-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetNeighborhoods(c *fiber.Ctx) error {
	neighborhoods := []models.Neighborhood{}
	if err := h.DB.WithContext(c.UserContext()).Order("name ASC").Find(&neighborhoods).Error; err != nil {
		return h.fail(c, err)
	}
	return c.JSON(neighborhoods)
}

// GetRanking returns every neighborhood ordered by normalized score.
func (h *Handler) GetRanking(c *fiber.Ctx) error {
	period, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		return h.fail(c, err)
	}
	ranking, err := h.Leaderboard.Ranking(c.UserContext(), period)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ranking)
}

func (h *Handler) GetNeighborhoodScore(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid neighborhood ID")
	}
	period, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		return h.fail(c, err)
	}
	score, err := h.Leaderboard.CalculateNormalizedScore(c.UserContext(), id, period)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(score)
}
