package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyOnDemand Frequency = "on_demand"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyOnDemand:
		return true
	}
	return false
}

// Lifetime is how long an assignment of this frequency stays open.
// On-demand assignments never expire and report ok=false.
func (f Frequency) Lifetime() (time.Duration, bool) {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour, true
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, true
	}
	return 0, false
}

type VerificationMethod string

const (
	VerificationGPS          VerificationMethod = "GPS"
	VerificationQuiz         VerificationMethod = "QUIZ"
	VerificationManualReport VerificationMethod = "MANUAL_REPORT"
	VerificationPhoto        VerificationMethod = "PHOTO"
)

const (
	MinBasePoints = 1
	MaxBasePoints = 1000
)

// VerificationCriteria holds the method-specific parameters. Only the fields
// relevant to the task's method are set.
type VerificationCriteria struct {
	TargetLocation    []float64         `json:"target_location,omitempty"`
	MinDistanceMeters *float64          `json:"min_distance_meters,omitempty"`
	Answers           map[string]string `json:"answers,omitempty"`
	Instructions      string            `json:"instructions,omitempty"`
}

type Task struct {
	ID                   uuid.UUID                                `json:"id" gorm:"type:uuid;primaryKey"`
	Title                string                                   `json:"title" gorm:"not null"`
	Description          string                                   `json:"description"`
	Category             string                                   `json:"category" gorm:"index;not null"` // mobility, waste, community
	Difficulty           string                                   `json:"difficulty"`
	Frequency            Frequency                                `json:"frequency" gorm:"index;not null"`
	BasePoints           int                                      `json:"basePoints" gorm:"not null"`
	Co2Impact            float64                                  `json:"co2Impact" gorm:"default:0"` // kg saved per completion
	VerificationMethod   VerificationMethod                       `json:"verificationMethod" gorm:"not null"`
	VerificationCriteria datatypes.JSONType[VerificationCriteria] `json:"verificationCriteria"`
	IsActive             bool                                     `json:"isActive" gorm:"index"`
	NeighborhoodID       *uuid.UUID                               `json:"neighborhoodId" gorm:"type:uuid;index"` // nil = global
	TemplateID           *uuid.UUID                               `json:"templateId" gorm:"type:uuid"`
	CreatedBy            *uuid.UUID                               `json:"createdBy" gorm:"type:uuid"`
	CreatedAt            time.Time                                `json:"createdAt"`
	UpdatedAt            time.Time                                `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt                           `json:"-" gorm:"index"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Criteria is a convenience accessor for the JSON column.
func (t *Task) Criteria() VerificationCriteria {
	return t.VerificationCriteria.Data()
}

// TaskWithStatus is what GET /tasks returns: the task plus the caller's
// current assignment state for it, if any.
type TaskWithStatus struct {
	Task
	AssignmentStatus *AssignmentStatus `json:"assignmentStatus"`
	ExpiresAt        *time.Time        `json:"expiresAt,omitempty"`
}
