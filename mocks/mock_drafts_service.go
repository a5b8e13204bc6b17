package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

// MockDraftsService is a mock implementation of port.DraftsService.
type MockDraftsService struct {
	mock.Mock
}

func (m *MockDraftsService) List(ctx context.Context, filter port.DraftFilter) ([]domain.Draft, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Draft), args.Int(1), args.Error(2)
}

func (m *MockDraftsService) Get(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftsService) ApplyCorrections(ctx context.Context, draftID uuid.UUID, revision int64, patch []domain.Correction) (*domain.Draft, error) {
	args := m.Called(ctx, draftID, revision, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftsService) UpdateStatus(ctx context.Context, draftID uuid.UUID, status domain.DraftStatus) error {
	args := m.Called(ctx, draftID, status)
	return args.Error(0)
}

func (m *MockDraftsService) Delete(ctx context.Context, draftID uuid.UUID) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *MockDraftsService) AttachFile(ctx context.Context, draftID uuid.UUID, file domain.DraftFile) error {
	args := m.Called(ctx, draftID, file)
	return args.Error(0)
}

func (m *MockDraftsService) DetachFile(ctx context.Context, draftID, fileID uuid.UUID) error {
	args := m.Called(ctx, draftID, fileID)
	return args.Error(0)
}
