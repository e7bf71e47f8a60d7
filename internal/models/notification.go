package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationInfo         NotificationType = "info"
	NotificationFeedback     NotificationType = "feedback"
	NotificationMotivational NotificationType = "motivational"
	NotificationSystem       NotificationType = "system"
)

type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

type Notification struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID         `json:"userId" gorm:"type:uuid;index;not null"`
	Type      NotificationType  `json:"type" gorm:"not null"`
	Title     string            `json:"title" gorm:"not null"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"isRead" gorm:"default:false"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NotificationInput is what trigger functions hand to the gate.
type NotificationInput struct {
	Title    string
	Message  string
	Type     NotificationType
	Channels []Channel
	Metadata map[string]any
}
