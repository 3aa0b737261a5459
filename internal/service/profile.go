package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/logging"
	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/types"
)

// DietProfileService stores the per-user inputs of the calculator
type DietProfileService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Ensure DietProfileService implements IDietProfileService
var _ IDietProfileService = (*DietProfileService)(nil)

func NewDietProfileService(db *gorm.DB, logger *zap.Logger) *DietProfileService {
	return &DietProfileService{
		db:     db,
		logger: logging.OrNop(logger),
	}
}

// GetDietProfile returns the stored profile, or an empty unsaved one when the
// user has not filled it in yet
func (s *DietProfileService) GetDietProfile(ctx context.Context, userID uuid.UUID) (*models.DietProfile, error) {
	var profile models.DietProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DietProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diet profile: %w", err)
	}
	return &profile, nil
}

// UpdateDietProfile applies a partial update, creating the profile if needed
func (s *DietProfileService) UpdateDietProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateDietProfileRequest) (*models.DietProfile, error) {
	profile, err := s.GetDietProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(profile)
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to save diet profile: %w", err)
	}

	s.logger.Debug("diet profile updated", zap.String("user_id", userID.String()))
	return profile, nil
}

// GetTargets computes calorie and macro targets from the stored profile
func (s *DietProfileService) GetTargets(ctx context.Context, userID uuid.UUID) (nutrition.MacroTargets, error) {
	profile, err := s.GetDietProfile(ctx, userID)
	if err != nil {
		return nutrition.MacroTargets{}, err
	}
	return nutrition.CalculateTargets(profile.ToProfile()), nil
}
