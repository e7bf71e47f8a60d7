package handlers

import (
	"strconv"

	"github.com/arnold/civic-tasks-api/internal/middleware"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GetTasks lists the tasks visible to the caller with their assignment status.
func (h *Handler) GetTasks(c *fiber.Ctx) error {
	tasks, err := h.Tasks.ListTasksForUser(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(tasks)
}

func (h *Handler) SubmitTask(c *fiber.Ctx) error {
	var req models.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.TaskID == uuid.Nil {
		return badRequest(c, "task_id is required")
	}

	resp, err := h.Tasks.Submit(c.UserContext(), middleware.GetUserID(c), req.TaskID, req.Proof)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// AssignTask lets a citizen opt into a task, typically an on-demand one.
func (h *Handler) AssignTask(c *fiber.Ctx) error {
	taskID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	ut, err := h.Tasks.AssignTask(c.UserContext(), middleware.GetUserID(c), taskID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ut)
}

type createTaskRequest struct {
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	Category             string                      `json:"category"`
	Difficulty           string                      `json:"difficulty"`
	Frequency            models.Frequency            `json:"frequency"`
	BasePoints           int                         `json:"basePoints"`
	Co2Impact            float64                     `json:"co2Impact"`
	VerificationMethod   models.VerificationMethod   `json:"verificationMethod"`
	VerificationCriteria models.VerificationCriteria `json:"verificationCriteria"`
	NeighborhoodID       *uuid.UUID                  `json:"neighborhoodId"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task := &models.Task{
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		Difficulty:           req.Difficulty,
		Frequency:            req.Frequency,
		BasePoints:           req.BasePoints,
		Co2Impact:            req.Co2Impact,
		VerificationMethod:   req.VerificationMethod,
		VerificationCriteria: datatypes.NewJSONType(req.VerificationCriteria),
		NeighborhoodID:       req.NeighborhoodID,
	}
	if err := h.Tasks.CreateTask(c.UserContext(), task, middleware.GetUserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) CreateTaskFromTemplate(c *fiber.Ctx) error {
	var req models.FromTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.TemplateID == uuid.Nil {
		return badRequest(c, "templateId is required")
	}

	task, err := h.Templates.CreateTaskFromTemplate(c.UserContext(), req.TemplateID, req.Overrides, middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) DeactivateTask(c *fiber.Ctx) error {
	taskID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	if err := h.Tasks.DeactivateTask(c.UserContext(), taskID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) GetPendingSubmissions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	subs, err := h.Tasks.PendingSubmissions(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(subs)
}

func (h *Handler) ReviewSubmission(c *fiber.Ctx) error {
	subID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}

	var req models.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.Tasks.ReviewSubmission(c.UserContext(), subID, middleware.GetUserID(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// RunExpirySweep triggers the sweep outside its schedule.
func (h *Handler) RunExpirySweep(c *fiber.Ctx) error {
	return c.JSON(h.Tasks.ReplaceExpiredTasksForAllUsers(c.UserContext()))
}

func (h *Handler) GetTemplates(c *fiber.Ctx) error {
	templates, err := h.Templates.ListTemplates(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(templates)
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid template ID")
	}
	tpl, err := h.Templates.GetTemplate(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(tpl)
}

func (h *Handler) CreateTemplate(c *fiber.Ctx) error {
	var req models.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	tpl, err := h.Templates.CreateTemplate(c.UserContext(), req, middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tpl)
}
