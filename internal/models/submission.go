package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Proof is what a citizen submits for a task. Which fields matter depends on
// the task's verification method.
type Proof struct {
	GPSLocation []float64         `json:"gps_location,omitempty"`
	Answers     map[string]string `json:"answers,omitempty"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	Report      string            `json:"report,omitempty"`
}

// Submission is the immutable record of one verification attempt. Only a
// PENDING row is ever updated, by the operator review.
type Submission struct {
	ID             uuid.UUID                 `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID                 `json:"userId" gorm:"type:uuid;index;not null"`
	TaskID         uuid.UUID                 `json:"taskId" gorm:"type:uuid;index;not null"`
	UserTaskID     uuid.UUID                 `json:"userTaskId" gorm:"type:uuid;index;not null"`
	NeighborhoodID *uuid.UUID                `json:"neighborhoodId" gorm:"type:uuid;index"`
	Status         AssignmentStatus          `json:"status" gorm:"index;not null"`
	PointsAwarded  int                       `json:"pointsAwarded" gorm:"default:0"`
	Co2Saved       float64                   `json:"co2Saved" gorm:"default:0"`
	Detail         string                    `json:"detail"`
	Proof          datatypes.JSONType[Proof] `json:"proof"`
	ReviewedBy     *uuid.UUID                `json:"reviewedBy" gorm:"type:uuid"`
	CompletedAt    time.Time                 `json:"completedAt" gorm:"index"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SubmitRequest struct {
	TaskID uuid.UUID `json:"task_id"`
	Proof  Proof     `json:"proof"`
}

type SubmitResponse struct {
	SubmissionStatus AssignmentStatus `json:"submission_status"`
	PointsEarned     int              `json:"points_earned"`
	NewBadges        []Badge          `json:"new_badges"`
	Detail           string           `json:"detail,omitempty"`
}

type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}
