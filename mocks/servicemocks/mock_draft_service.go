package servicemocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/internal/service"
	"shipdraft/internal/xindus"
)

// MockDraftService is a mock implementation of service.DraftService.
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) List(ctx context.Context, filter port.DraftFilter) ([]domain.Draft, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Draft), args.Int(1), args.Error(2)
}

func (m *MockDraftService) Get(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) OpenSession(ctx context.Context, draftID uuid.UUID) (*domain.Shipment, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}

func (m *MockDraftService) StageField(ctx context.Context, draftID uuid.UUID, path string, value interface{}) error {
	args := m.Called(ctx, draftID, path, value)
	return args.Error(0)
}

func (m *MockDraftService) EditBoxAddress(ctx context.Context, draftID uuid.UUID, boxIndex int, addr domain.ShipmentAddress) ([]int, error) {
	args := m.Called(ctx, draftID, boxIndex, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockDraftService) EditProduct(ctx context.Context, draftID uuid.UUID, productIndex int, updated domain.ProductDetail) (*service.ProductEditResult, error) {
	args := m.Called(ctx, draftID, productIndex, updated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductEditResult), args.Error(1)
}

func (m *MockDraftService) SessionData(draftID uuid.UUID) (*domain.Shipment, int, error) {
	args := m.Called(draftID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*domain.Shipment), args.Int(1), args.Error(2)
}

func (m *MockDraftService) Flush(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) Discard(draftID uuid.UUID) error {
	args := m.Called(draftID)
	return args.Error(0)
}

func (m *MockDraftService) CloseSession(draftID uuid.UUID) {
	m.Called(draftID)
}

func (m *MockDraftService) UpdateStatus(ctx context.Context, draftID uuid.UUID, status domain.DraftStatus) error {
	args := m.Called(ctx, draftID, status)
	return args.Error(0)
}

func (m *MockDraftService) BulkUpdateStatus(ctx context.Context, draftIDs []uuid.UUID, status domain.DraftStatus) (*service.BulkStatusResult, error) {
	args := m.Called(ctx, draftIDs, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BulkStatusResult), args.Error(1)
}

func (m *MockDraftService) Delete(ctx context.Context, draftID uuid.UUID) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *MockDraftService) Validate(ctx context.Context, draftID uuid.UUID) ([]xindus.Issue, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]xindus.Issue), args.Error(1)
}

func (m *MockDraftService) Forward(ctx context.Context, draftID uuid.UUID) (*service.ForwardResult, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ForwardResult), args.Error(1)
}

func (m *MockDraftService) ExportCSV(ctx context.Context, filter port.DraftFilter, w io.Writer) error {
	args := m.Called(ctx, filter, w)
	return args.Error(0)
}

func (m *MockDraftService) ExportWorkbook(ctx context.Context, draftID uuid.UUID, w io.Writer) error {
	args := m.Called(ctx, draftID, w)
	return args.Error(0)
}
