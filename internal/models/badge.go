package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BadgeRequirements is a set of thresholds; a nil field is not checked.
type BadgeRequirements struct {
	MinStreak         *int     `json:"min_streak,omitempty"`
	MinPoints         *int     `json:"min_points,omitempty"`
	MinCo2Saved       *float64 `json:"min_co2_saved,omitempty"`
	MinTasksCompleted *int     `json:"min_tasks_completed,omitempty"`
}

type Badge struct {
	ID           uuid.UUID                             `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string                                `json:"name" gorm:"uniqueIndex;not null"`
	Description  string                                `json:"description"`
	Icon         string                                `json:"icon"`
	Requirements datatypes.JSONType[BadgeRequirements] `json:"requirements"`
	CreatedAt    time.Time                             `json:"createdAt"`
	UpdatedAt    time.Time                             `json:"updatedAt"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserBadge is an append-only award row.
type UserBadge struct {
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	BadgeID  uuid.UUID `json:"badgeId" gorm:"type:uuid;primaryKey"`
	EarnedAt time.Time `json:"earnedAt"`
}

type BadgeWithStatus struct {
	Badge
	Earned bool `json:"earned"`
}

// UserStats is the snapshot badge requirements are evaluated against.
type UserStats struct {
	Points         int     `json:"points"`
	Streak         int     `json:"streak"`
	Co2Saved       float64 `json:"co2Saved"`
	TasksCompleted int     `json:"tasksCompleted"`
}
