package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	StatusAssigned AssignmentStatus = "ASSIGNED"
	StatusApproved AssignmentStatus = "APPROVED"
	StatusRejected AssignmentStatus = "REJECTED"
	StatusExpired  AssignmentStatus = "EXPIRED"
	// StatusPending only appears on submissions awaiting operator review.
	StatusPending AssignmentStatus = "PENDING"
)

// UserTask binds a user to a task. ASSIGNED is the only non-terminal state.
type UserTask struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID        `json:"userId" gorm:"type:uuid;index:idx_user_task_status,priority:1;not null"`
	TaskID        uuid.UUID        `json:"taskId" gorm:"type:uuid;index:idx_user_task_status,priority:2;not null"`
	Frequency     Frequency        `json:"frequency" gorm:"not null"`
	Status        AssignmentStatus `json:"status" gorm:"index:idx_user_task_status,priority:3;not null"`
	ExpiresAt     *time.Time       `json:"expiresAt" gorm:"index"`
	CompletedAt   *time.Time       `json:"completedAt"`
	PointsAwarded int              `json:"pointsAwarded" gorm:"default:0"`
	Rejections    int              `json:"rejections" gorm:"default:0"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`

	Task Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}

func (ut *UserTask) BeforeCreate(tx *gorm.DB) error {
	if ut.ID == uuid.Nil {
		ut.ID = uuid.New()
	}
	return nil
}
