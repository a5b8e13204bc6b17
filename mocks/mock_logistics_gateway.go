package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipdraft/internal/xindus"
)

// MockLogisticsGateway is a mock implementation of port.LogisticsGateway.
type MockLogisticsGateway struct {
	mock.Mock
}

func (m *MockLogisticsGateway) CreateShipment(ctx context.Context, payload *xindus.Payload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}
