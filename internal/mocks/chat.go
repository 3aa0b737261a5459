package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/types"
)

// MockChatService is a mock implementation of the ChatService interface
type MockChatService struct {
	mock.Mock
}

var _ service.IChatService = (*MockChatService)(nil)

func (m *MockChatService) Chat(ctx context.Context, userID uuid.UUID, message string) (*types.ChatResponse, error) {
	args := m.Called(ctx, userID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatResponse), args.Error(1)
}

func (m *MockChatService) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
