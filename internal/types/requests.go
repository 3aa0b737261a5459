package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
)

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UpdateDietProfileRequest is a partial update; nil fields are left unchanged
type UpdateDietProfileRequest struct {
	WeightKg  *float64 `json:"weight_kg" binding:"omitempty,gt=0,lt=500"`
	HeightCm  *float64 `json:"height_cm" binding:"omitempty,gt=0,lt=300"`
	Age       *int     `json:"age" binding:"omitempty,gt=0,lt=130"`
	Goal      *string  `json:"goal" binding:"omitempty,max=100"`
	DietType  *string  `json:"diet_type" binding:"omitempty,max=50"`
	Allergies *string  `json:"allergies" binding:"omitempty,max=500"`
}

// Apply copies the set fields onto a stored profile
func (r UpdateDietProfileRequest) Apply(p *models.DietProfile) {
	if r.WeightKg != nil {
		p.WeightKg = r.WeightKg
	}
	if r.HeightCm != nil {
		p.HeightCm = r.HeightCm
	}
	if r.Age != nil {
		p.Age = r.Age
	}
	if r.Goal != nil {
		p.Goal = *r.Goal
	}
	if r.DietType != nil {
		p.DietType = *r.DietType
	}
	if r.Allergies != nil {
		p.Allergies = *r.Allergies
	}
}

// GeneratePlanRequest optionally overrides stored profile fields for one
// generation. Seed makes the plan reproducible.
type GeneratePlanRequest struct {
	UpdateDietProfileRequest
	Seed *uint64 `json:"seed,omitempty"`
}

// Overlay returns profile with the request's fields applied
func (r GeneratePlanRequest) Overlay(profile nutrition.DietProfile) nutrition.DietProfile {
	rec := models.DietProfile{
		WeightKg:  profile.WeightKg,
		HeightCm:  profile.HeightCm,
		Age:       profile.Age,
		Goal:      profile.Goal,
		DietType:  profile.DietType,
		Allergies: profile.Allergies,
	}
	r.Apply(&rec)
	return rec.ToProfile()
}

// ChatRequest represents one user chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// ChatResponse carries the parsed bot reply
type ChatResponse struct {
	Bubbles  []string                `json:"bubbles"`
	DietPlan *nutrition.DietPlanData `json:"dietPlan,omitempty"`
	PlanID   *uuid.UUID              `json:"plan_id,omitempty"`
}

// ExportResponse points at an exported plan document
type ExportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RateLimitStatus reports the caller's remaining quota
type RateLimitStatus struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetInS  int64 `json:"reset_in_seconds"`
}
