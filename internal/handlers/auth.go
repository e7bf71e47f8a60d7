package handlers

import (
	"log/slog"
	"strings"

	"github.com/arnold/civic-tasks-api/internal/middleware"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	// Check if user exists
	var existing int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return h.fail(c, err)
	}
	if existing > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already registered",
		})
	}

	if req.NeighborhoodID != nil {
		var count int64
		if err := h.DB.Model(&models.Neighborhood{}).Where("id = ?", *req.NeighborhoodID).Count(&count).Error; err != nil {
			return h.fail(c, err)
		}
		if count == 0 {
			return badRequest(c, "Unknown neighborhood")
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.fail(c, err)
	}

	user := models.User{
		Email:          req.Email,
		Password:       string(hashedPassword),
		Name:           req.Name,
		Role:           models.RoleCitizen,
		NeighborhoodID: req.NeighborhoodID,
		Preferences:    models.DefaultNotificationPreferences(),
	}
	if h.Config.IsOperatorEmail(user.Email) {
		user.Role = models.RoleOperator
	}

	if err := h.DB.Create(&user).Error; err != nil {
		return h.fail(c, err)
	}

	// A new citizen starts with a daily and a weekly challenge.
	if user.Role == models.RoleCitizen {
		if _, err := h.Tasks.AssignInitialTasks(c.UserContext(), user.ID); err != nil {
			slog.Warn("Initial task assignment failed", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		}
	}

	token, err := middleware.GenerateToken(user.ID, user.Role, h.Config.JWTSecret)
	if err != nil {
		return h.fail(c, err)
	}

	user.BadgeIDs = []uuid.UUID{}
	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token: token,
		User:  user,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateToken(user.ID, user.Role, h.Config.JWTSecret)
	if err != nil {
		return h.fail(c, err)
	}

	ids, err := h.Badges.BadgeIDs(c.UserContext(), user.ID)
	if err != nil {
		return h.fail(c, err)
	}
	user.BadgeIDs = ids

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  user,
	})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	ids, err := h.Badges.BadgeIDs(c.UserContext(), user.ID)
	if err != nil {
		return h.fail(c, err)
	}
	user.BadgeIDs = ids

	return c.JSON(user)
}
