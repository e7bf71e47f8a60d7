package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCitizen  = "citizen"
	RoleOperator = "operator"
)

// NotificationPreferences are the per-user flags the notification gate reads.
type NotificationPreferences struct {
	Email                 bool `json:"email"`
	Push                  bool `json:"push"`
	Motivational          bool `json:"motivational"`
	PositiveReinforcement bool `json:"positiveReinforcement"`
	Informational         bool `json:"informational"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Email:                 true,
		Push:                  true,
		Motivational:          true,
		PositiveReinforcement: true,
		Informational:         true,
	}
}

type User struct {
	ID               uuid.UUID               `json:"id" gorm:"type:uuid;primaryKey"`
	Email            string                  `json:"email" gorm:"uniqueIndex;not null"`
	Password         string                  `json:"-"`
	Name             string                  `json:"name"`
	Role             string                  `json:"role" gorm:"default:citizen"`
	NeighborhoodID   *uuid.UUID              `json:"neighborhoodId" gorm:"type:uuid;index"`
	Points           int                     `json:"points" gorm:"default:0"`
	Streak           int                     `json:"streak" gorm:"default:0"`
	Co2Saved         float64                 `json:"co2Saved" gorm:"default:0"`
	LastActivityDate *time.Time              `json:"lastActivityDate"`
	Preferences      NotificationPreferences `json:"notificationPreferences" gorm:"embedded;embeddedPrefix:pref_"`
	FCMToken         string                  `json:"-" gorm:"column:fcm_token"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt          `json:"-" gorm:"index"`

	// BadgeIDs is filled from user_badges on read; it is not a column.
	BadgeIDs []uuid.UUID `json:"badgesId" gorm:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCitizen
	}
	return nil
}

// Auth DTOs
type RegisterRequest struct {
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	Name           string     `json:"name"`
	NeighborhoodID *uuid.UUID `json:"neighborhoodId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdatePreferencesRequest struct {
	Email                 *bool `json:"email"`
	Push                  *bool `json:"push"`
	Motivational          *bool `json:"motivational"`
	PositiveReinforcement *bool `json:"positiveReinforcement"`
	Informational         *bool `json:"informational"`
}
