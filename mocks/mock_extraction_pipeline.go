package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

// MockExtractionPipeline is a mock implementation of port.ExtractionPipeline.
type MockExtractionPipeline struct {
	mock.Mock
}

func (m *MockExtractionPipeline) Submit(ctx context.Context, files []port.StagedFile) (uuid.UUID, error) {
	args := m.Called(ctx, files)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockExtractionPipeline) Events(ctx context.Context, batchID uuid.UUID) (<-chan domain.BatchSnapshot, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.BatchSnapshot), args.Error(1)
}

func (m *MockExtractionPipeline) ActiveBatches(ctx context.Context) ([]domain.Batch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}
