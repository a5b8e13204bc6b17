package servicemocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shipdraft/internal/domain"
	"shipdraft/internal/service"
)

// MockDraftFileService is a mock implementation of service.DraftFileService.
type MockDraftFileService struct {
	mock.Mock
}

func (m *MockDraftFileService) Attach(ctx context.Context, input service.DraftFileUploadInput) (*domain.DraftFile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DraftFile), args.Error(1)
}

func (m *MockDraftFileService) Detach(ctx context.Context, draftID, fileID uuid.UUID) error {
	args := m.Called(ctx, draftID, fileID)
	return args.Error(0)
}

func (m *MockDraftFileService) DownloadURL(ctx context.Context, draftID, fileID uuid.UUID) (string, error) {
	args := m.Called(ctx, draftID, fileID)
	return args.String(0), args.Error(1)
}

func (m *MockDraftFileService) Open(ctx context.Context, draftID, fileID uuid.UUID) (*domain.DraftFile, []byte, error) {
	args := m.Called(ctx, draftID, fileID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.DraftFile), args.Get(1).([]byte), args.Error(2)
}
