package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IDietProfileService defines the interface for diet profile operations
type IDietProfileService interface {
	GetDietProfile(ctx context.Context, userID uuid.UUID) (*models.DietProfile, error)
	UpdateDietProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateDietProfileRequest) (*models.DietProfile, error)
	GetTargets(ctx context.Context, userID uuid.UUID) (nutrition.MacroTargets, error)
}

// IPlanService defines the interface for weekly plan operations
type IPlanService interface {
	GeneratePlan(ctx context.Context, userID uuid.UUID, req *types.GeneratePlanRequest) (*models.DietPlan, error)
	SavePlan(ctx context.Context, userID uuid.UUID, source string, data nutrition.DietPlanData) (*models.DietPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID, limit int) ([]models.DietPlan, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.DietPlan, error)
	LatestPlan(ctx context.Context, userID uuid.UUID) (*models.DietPlan, error)
}

// IChatService defines the interface for the coaching conversation
type IChatService interface {
	Chat(ctx context.Context, userID uuid.UUID, message string) (*types.ChatResponse, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) error
}

// IPlanExporter defines the interface for exporting plans to object storage
type IPlanExporter interface {
	Export(ctx context.Context, userID, planID uuid.UUID) (*types.ExportResponse, error)
}

// ObjectStore is the subset of object storage the exporter needs
type ObjectStore interface {
	PutJSON(ctx context.Context, key string, body []byte) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}
