package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/types"
)

// MockPlanService is a mock implementation of the PlanService interface
type MockPlanService struct {
	mock.Mock
}

var _ service.IPlanService = (*MockPlanService)(nil)

func (m *MockPlanService) GeneratePlan(ctx context.Context, userID uuid.UUID, req *types.GeneratePlanRequest) (*models.DietPlan, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietPlan), args.Error(1)
}

func (m *MockPlanService) SavePlan(ctx context.Context, userID uuid.UUID, source string, data nutrition.DietPlanData) (*models.DietPlan, error) {
	args := m.Called(ctx, userID, source, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietPlan), args.Error(1)
}

func (m *MockPlanService) ListPlans(ctx context.Context, userID uuid.UUID, limit int) ([]models.DietPlan, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DietPlan), args.Error(1)
}

func (m *MockPlanService) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.DietPlan, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietPlan), args.Error(1)
}

func (m *MockPlanService) LatestPlan(ctx context.Context, userID uuid.UUID) (*models.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietPlan), args.Error(1)
}

// MockPlanExporter is a mock implementation of the PlanExporter interface
type MockPlanExporter struct {
	mock.Mock
}

var _ service.IPlanExporter = (*MockPlanExporter)(nil)

func (m *MockPlanExporter) Export(ctx context.Context, userID, planID uuid.UUID) (*types.ExportResponse, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExportResponse), args.Error(1)
}

// MockObjectStore is a mock implementation of the ObjectStore interface
type MockObjectStore struct {
	mock.Mock
}

var _ service.ObjectStore = (*MockObjectStore)(nil)

func (m *MockObjectStore) PutJSON(ctx context.Context, key string, body []byte) error {
	args := m.Called(ctx, key, body)
	return args.Error(0)
}

func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}
