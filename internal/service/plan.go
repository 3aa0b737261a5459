package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/logging"
	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/types"
)

const (
	latestPlanTTL    = 24 * time.Hour
	defaultListLimit = 20
	maxListLimit     = 100
)

// PlanService generates weekly plans and keeps the user's plan history
type PlanService struct {
	db        *gorm.DB
	redis     *redis.Client
	generator *nutrition.Generator
	profiles  IDietProfileService
	logger    *zap.Logger
}

var _ IPlanService = (*PlanService)(nil)

// NewPlanService creates a PlanService. redis may be nil, which disables the
// latest-plan cache.
func NewPlanService(db *gorm.DB, redisClient *redis.Client, generator *nutrition.Generator, profiles IDietProfileService, logger *zap.Logger) *PlanService {
	if generator == nil {
		generator = nutrition.NewGenerator(nil)
	}
	return &PlanService{
		db:        db,
		redis:     redisClient,
		generator: generator,
		profiles:  profiles,
		logger:    logging.OrNop(logger),
	}
}

// GeneratePlan builds a plan from the stored profile with any request
// overrides applied, and saves it
func (s *PlanService) GeneratePlan(ctx context.Context, userID uuid.UUID, req *types.GeneratePlanRequest) (*models.DietPlan, error) {
	stored, err := s.profiles.GetDietProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := stored.ToProfile()
	if req != nil {
		profile = req.Overlay(profile)
	}

	var data nutrition.DietPlanData
	if req != nil && req.Seed != nil {
		data = s.generator.GenerateSeeded(profile, *req.Seed)
	} else {
		data = s.generator.Generate(profile)
	}
	if data.IsPartial {
		s.logger.Warn("generated partial plan", zap.String("user_id", userID.String()), zap.String("diet_type", profile.DietType))
	}

	return s.SavePlan(ctx, userID, models.PlanSourceEngine, data)
}

// SavePlan stores a plan and makes it the user's latest
func (s *PlanService) SavePlan(ctx context.Context, userID uuid.UUID, source string, data nutrition.DietPlanData) (*models.DietPlan, error) {
	plan := models.NewDietPlan(userID, source, data)
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.cacheLatest(ctx, plan)
	return plan, nil
}

// ListPlans returns the user's plans, newest first
func (s *PlanService) ListPlans(ctx context.Context, userID uuid.UUID, limit int) ([]models.DietPlan, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var plans []models.DietPlan
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (s *PlanService) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.DietPlan, error) {
	var plan models.DietPlan
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

// LatestPlan returns the most recent plan, from cache when possible
func (s *PlanService) LatestPlan(ctx context.Context, userID uuid.UUID) (*models.DietPlan, error) {
	if plan := s.cachedLatest(ctx, userID); plan != nil {
		return plan, nil
	}

	var plan models.DietPlan
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest plan: %w", err)
	}

	s.cacheLatest(ctx, &plan)
	return &plan, nil
}

func latestPlanKey(userID uuid.UUID) string {
	return fmt.Sprintf("plan:latest:%s", userID)
}

// cacheLatest is best effort; the database stays the source of truth
func (s *PlanService) cacheLatest(ctx context.Context, plan *models.DietPlan) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		s.logger.Warn("failed to marshal plan for cache", zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, latestPlanKey(plan.UserID), data, latestPlanTTL).Err(); err != nil {
		s.logger.Warn("failed to cache latest plan", zap.Error(err))
	}
}

func (s *PlanService) cachedLatest(ctx context.Context, userID uuid.UUID) *models.DietPlan {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, latestPlanKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read latest plan cache", zap.Error(err))
		}
		return nil
	}
	var plan models.DietPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		s.logger.Warn("discarding corrupt latest plan cache", zap.Error(err))
		return nil
	}
	return &plan
}
