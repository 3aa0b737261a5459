package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/nutrition"
)

// Plan sources
const (
	PlanSourceEngine = "engine"
	PlanSourceChat   = "chat"
)

// PlanDocument stores a whole plan as a JSON text column
type PlanDocument nutrition.DietPlanData

// Value implements the driver.Valuer interface
func (d PlanDocument) Value() (driver.Value, error) {
	data, err := json.Marshal(nutrition.DietPlanData(d))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (d *PlanDocument) Scan(value interface{}) error {
	if value == nil {
		*d = PlanDocument{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported plan document type %T", value)
	}

	var plan nutrition.DietPlanData
	if err := json.Unmarshal(bytes, &plan); err != nil {
		return err
	}
	plan.Normalize()
	*d = PlanDocument(plan)
	return nil
}

// MarshalJSON renders the document as the plan itself
func (d PlanDocument) MarshalJSON() ([]byte, error) {
	return json.Marshal(nutrition.DietPlanData(d))
}

// DietPlan is a saved weekly plan, produced by the engine or parsed from chat
type DietPlan struct {
	ID             uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Source         string         `gorm:"size:20;not null" json:"source"`
	DailyCalories  int            `json:"daily_calories"`
	IsPersonalized bool           `json:"is_personalized"`
	IsPartial      bool           `json:"is_partial"`
	Plan           PlanDocument   `gorm:"type:text;not null" json:"plan"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DietPlan) TableName() string {
	return "diet_plans"
}

func (p *DietPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewDietPlan wraps plan data into a record for userID
func NewDietPlan(userID uuid.UUID, source string, data nutrition.DietPlanData) *DietPlan {
	data.Normalize()
	return &DietPlan{
		UserID:         userID,
		Source:         source,
		DailyCalories:  int(data.DailyCalories),
		IsPersonalized: data.IsPersonalized,
		IsPartial:      data.IsPartial,
		Plan:           PlanDocument(data),
	}
}

// Data returns the stored plan
func (p *DietPlan) Data() nutrition.DietPlanData {
	return nutrition.DietPlanData(p.Plan)
}
