package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/arnold/civic-tasks-api/internal/verification"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateService lets operators publish tasks from reusable templates.
type TemplateService struct {
	db       *gorm.DB
	verifier *verification.Dispatcher
	notifier *NotificationService
}

func NewTemplateService(db *gorm.DB, verifier *verification.Dispatcher, notifier *NotificationService) *TemplateService {
	return &TemplateService{db: db, verifier: verifier, notifier: notifier}
}

func (s *TemplateService) CreateTemplate(ctx context.Context, req models.CreateTemplateRequest, operatorID uuid.UUID) (*models.TaskTemplate, error) {
	switch {
	case req.Name == "":
		return nil, apperr.Validation("Required field missing: name")
	case req.Category == "":
		return nil, apperr.Validation("Required field missing: category")
	case !req.Frequency.Valid():
		return nil, apperr.Validation("Invalid frequency: %s", req.Frequency)
	case !s.verifier.Supports(req.VerificationMethod):
		return nil, apperr.Validation("Unsupported verification method: %s", req.VerificationMethod)
	}
	rng := req.BasePointsRange
	if rng.Min < models.MinBasePoints || rng.Max > models.MaxBasePoints || rng.Min > rng.Max {
		return nil, apperr.Validation("Points range must lie within %d and %d", models.MinBasePoints, models.MaxBasePoints)
	}
	for _, f := range req.ConfigurableFields {
		if f.Name == "" {
			return nil, apperr.Validation("Configurable field without a name")
		}
	}

	tpl := &models.TaskTemplate{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		Difficulty:          req.Difficulty,
		Frequency:           req.Frequency,
		BasePointsRange:     datatypes.NewJSONType(rng),
		VerificationMethod:  req.VerificationMethod,
		DefaultCriteria:     datatypes.NewJSONType(req.DefaultCriteria),
		ConfigurableFields:  datatypes.NewJSONSlice(req.ConfigurableFields),
		ImpactMetricsSchema: datatypes.JSONMap(req.ImpactMetricsSchema),
		Co2Impact:           req.Co2Impact,
		CreatedBy:           &operatorID,
	}
	if err := s.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tpl, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*models.TaskTemplate, error) {
	var tpl models.TaskTemplate
	if err := s.db.WithContext(ctx).First(&tpl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Template", id.String())
		}
		return nil, err
	}
	return &tpl, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context) ([]models.TaskTemplate, error) {
	templates := []models.TaskTemplate{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&templates).Error
	return templates, err
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// CreateTaskFromTemplate validates the overrides against the template's
// configurable fields, creates the task and announces it. Global tasks go to
// every user, neighborhood tasks only to residents.
func (s *TemplateService) CreateTaskFromTemplate(ctx context.Context, templateID uuid.UUID, overrides map[string]any, operatorID uuid.UUID) (*models.Task, error) {
	tpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if overrides == nil {
		overrides = map[string]any{}
	}

	for _, f := range tpl.ConfigurableFields {
		v, ok := overrides[f.Name]
		if f.Required && (!ok || isBlank(v)) {
			return nil, apperr.Validation("Required field missing: %s", f.Name)
		}
		if !ok || f.Name == "base_points" || (f.Min == nil && f.Max == nil) {
			continue
		}
		n, isNum := toFloat(v)
		if !isNum {
			return nil, apperr.Validation("Field %s must be a number", f.Name)
		}
		if (f.Min != nil && n < *f.Min) || (f.Max != nil && n > *f.Max) {
			return nil, apperr.Validation("Field %s is out of range", f.Name)
		}
	}

	rng := tpl.BasePointsRange.Data()
	points := rng.Min
	if v, ok := overrides["base_points"]; ok {
		n, isNum := toFloat(v)
		if !isNum || n != math.Trunc(n) || n < float64(rng.Min) || n > float64(rng.Max) {
			return nil, apperr.Validation("Points must be between %d and %d", rng.Min, rng.Max)
		}
		points = int(n)
	}

	criteria, err := mergeCriteria(tpl.DefaultCriteria.Data(), overrides)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:                tpl.Name,
		Description:          tpl.Description,
		Category:             tpl.Category,
		Difficulty:           tpl.Difficulty,
		Frequency:            tpl.Frequency,
		BasePoints:           points,
		Co2Impact:            tpl.Co2Impact,
		VerificationMethod:   tpl.VerificationMethod,
		VerificationCriteria: datatypes.NewJSONType(criteria),
		IsActive:             true,
		TemplateID:           &tpl.ID,
		CreatedBy:            &operatorID,
	}
	if v, ok := overrides["title"].(string); ok && v != "" {
		task.Title = v
	}
	if v, ok := overrides["description"].(string); ok && v != "" {
		task.Description = v
	}
	if v, ok := overrides["co2_impact"]; ok {
		n, isNum := toFloat(v)
		if !isNum || n < 0 {
			return nil, apperr.Validation("Field co2_impact must be a non-negative number")
		}
		task.Co2Impact = n
	}
	if v, ok := overrides["neighborhood_id"]; ok && !isBlank(v) {
		raw, _ := v.(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation("Invalid neighborhood_id")
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Neighborhood{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperr.NotFound("Neighborhood", raw)
		}
		task.NeighborhoodID = &id
	}

	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	in := models.NotificationInput{
		Title:    "Nuova sfida disponibile",
		Message:  fmt.Sprintf("%s: guadagna fino a %d punti!", task.Title, task.BasePoints),
		Type:     models.NotificationInfo,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelPush},
		Metadata: map[string]any{"taskId": task.ID.String()},
	}
	var sent []*models.Notification
	if task.NeighborhoodID == nil {
		sent, err = s.notifier.NotifyAllUsers(ctx, in)
	} else {
		sent, err = s.notifier.NotifyNeighborhoodEvent(ctx, *task.NeighborhoodID, in)
	}
	if err != nil {
		slog.Warn("Task announcement failed", slog.String("task_id", task.ID.String()), slog.Any("error", err))
	}
	slog.Info("Task created from template",
		slog.String("task_id", task.ID.String()),
		slog.String("template_id", tpl.ID.String()),
		slog.Int("notified", len(sent)))
	return task, nil
}

// mergeCriteria applies criteria overrides on top of the template defaults.
func mergeCriteria(c models.VerificationCriteria, overrides map[string]any) (models.VerificationCriteria, error) {
	if v, ok := overrides["target_location"]; ok {
		raw, isList := v.([]any)
		if !isList || len(raw) != 2 {
			return c, apperr.Validation("Field target_location must be [lat, lon]")
		}
		loc := make([]float64, 2)
		for i, x := range raw {
			n, isNum := toFloat(x)
			if !isNum {
				return c, apperr.Validation("Field target_location must be [lat, lon]")
			}
			loc[i] = n
		}
		c.TargetLocation = loc
	}
	if v, ok := overrides["min_distance_meters"]; ok {
		n, isNum := toFloat(v)
		if !isNum || n <= 0 {
			return c, apperr.Validation("Field min_distance_meters must be a positive number")
		}
		c.MinDistanceMeters = &n
	}
	if v, ok := overrides["answers"]; ok {
		raw, isMap := v.(map[string]any)
		if !isMap {
			return c, apperr.Validation("Field answers must be an object")
		}
		answers := make(map[string]string, len(raw))
		for k, x := range raw {
			answers[k] = fmt.Sprintf("%v", x)
		}
		c.Answers = answers
	}
	if v, ok := overrides["instructions"].(string); ok {
		c.Instructions = v
	}
	return c, nil
}
