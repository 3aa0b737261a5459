package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/nutrition"
)

// DietProfile is the stored nutrition profile of a user. One row per user.
type DietProfile struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	WeightKg  *float64       `json:"weight_kg"`
	HeightCm  *float64       `json:"height_cm"`
	Age       *int           `json:"age"`
	Goal      string         `gorm:"size:100" json:"goal"`
	DietType  string         `gorm:"size:50" json:"diet_type"`
	Allergies string         `gorm:"type:text" json:"allergies"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DietProfile) TableName() string {
	return "diet_profiles"
}

func (p *DietProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ToProfile converts the record into calculator input
func (p *DietProfile) ToProfile() nutrition.DietProfile {
	if p == nil {
		return nutrition.DietProfile{}
	}
	return nutrition.DietProfile{
		WeightKg:  p.WeightKg,
		HeightCm:  p.HeightCm,
		Age:       p.Age,
		Goal:      p.Goal,
		DietType:  p.DietType,
		Allergies: p.Allergies,
	}
}
