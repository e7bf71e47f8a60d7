package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Neighborhood struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string         `json:"name" gorm:"not null"`
	City            string         `json:"city"`
	TotalScore      int            `json:"totalScore" gorm:"default:0"`
	RankingPosition int            `json:"rankingPosition" gorm:"default:0"`
	AirQualityIndex float64        `json:"airQualityIndex" gorm:"column:air_quality_index;default:0"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func (n *Neighborhood) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type NormalizedScore struct {
	NeighborhoodID     uuid.UUID `json:"neighborhoodId"`
	Base               int       `json:"base"`
	ParticipationRate  int       `json:"participationRate"`
	Multiplier         float64   `json:"multiplier"`
	Delta              float64   `json:"delta"`
	EnvironmentalBonus float64   `json:"environmentalBonus"`
	Total              float64   `json:"total"`
}

type RankingEntry struct {
	Position     int             `json:"rankingPosition"`
	Neighborhood Neighborhood    `json:"neighborhood"`
	Score        NormalizedScore `json:"score"`
}
