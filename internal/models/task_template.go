package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PointsRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ConfigurableField describes one override an operator may (or must) supply
// when instantiating a task from a template. Min/Max bound numeric values.
type ConfigurableField struct {
	Name     string   `json:"name"`
	Required bool     `json:"required"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

type TaskTemplate struct {
	ID                  uuid.UUID                                `json:"id" gorm:"type:uuid;primaryKey"`
	Name                string                                   `json:"name" gorm:"not null"`
	Description         string                                   `json:"description"`
	Category            string                                   `json:"category" gorm:"not null"`
	Difficulty          string                                   `json:"difficulty"`
	Frequency           Frequency                                `json:"frequency" gorm:"not null"`
	BasePointsRange     datatypes.JSONType[PointsRange]          `json:"basePointsRange"`
	VerificationMethod  VerificationMethod                       `json:"verificationMethod" gorm:"not null"`
	DefaultCriteria     datatypes.JSONType[VerificationCriteria] `json:"defaultCriteria"`
	ConfigurableFields  datatypes.JSONSlice[ConfigurableField]   `json:"configurableFields"`
	ImpactMetricsSchema datatypes.JSONMap                        `json:"impactMetricsSchema"`
	Co2Impact           float64                                  `json:"co2Impact" gorm:"default:0"`
	CreatedBy           *uuid.UUID                               `json:"createdBy" gorm:"type:uuid"`
	CreatedAt           time.Time                                `json:"createdAt"`
	UpdatedAt           time.Time                                `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt                           `json:"-" gorm:"index"`
}

func (t *TaskTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type CreateTemplateRequest struct {
	Name                string               `json:"name"`
	Description         string               `json:"description"`
	Category            string               `json:"category"`
	Difficulty          string               `json:"difficulty"`
	Frequency           Frequency            `json:"frequency"`
	BasePointsRange     PointsRange          `json:"basePointsRange"`
	VerificationMethod  VerificationMethod   `json:"verificationMethod"`
	DefaultCriteria     VerificationCriteria `json:"defaultCriteria"`
	ConfigurableFields  []ConfigurableField  `json:"configurableFields"`
	ImpactMetricsSchema map[string]any       `json:"impactMetricsSchema"`
	Co2Impact           float64              `json:"co2Impact"`
}

// FromTemplateRequest is the body of POST /tasks/from-template. Overrides
// carries the configurable field values keyed by field name.
type FromTemplateRequest struct {
	TemplateID uuid.UUID      `json:"templateId"`
	Overrides  map[string]any `json:"overrides"`
}
