package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBatchNotifier is a mock implementation of port.BatchNotifier.
type MockBatchNotifier struct {
	mock.Mock
}

func (m *MockBatchNotifier) NotifyBatchComplete(ctx context.Context, batchID uuid.UUID, shipmentsFound int) error {
	args := m.Called(ctx, batchID, shipmentsFound)
	return args.Error(0)
}

func (m *MockBatchNotifier) NotifyBatchFailed(ctx context.Context, batchID uuid.UUID, reason string) error {
	args := m.Called(ctx, batchID, reason)
	return args.Error(0)
}
