package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/types"
)

// MockDietProfileService is a mock implementation of the DietProfileService interface
type MockDietProfileService struct {
	mock.Mock
}

var _ service.IDietProfileService = (*MockDietProfileService)(nil)

func (m *MockDietProfileService) GetDietProfile(ctx context.Context, userID uuid.UUID) (*models.DietProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietProfile), args.Error(1)
}

func (m *MockDietProfileService) UpdateDietProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateDietProfileRequest) (*models.DietProfile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietProfile), args.Error(1)
}

func (m *MockDietProfileService) GetTargets(ctx context.Context, userID uuid.UUID) (nutrition.MacroTargets, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(nutrition.MacroTargets), args.Error(1)
}
