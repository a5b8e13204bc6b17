package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipdraft/internal/domain"
)

// MockDutyLookup is a mock implementation of port.DutyLookup.
type MockDutyLookup struct {
	mock.Mock
}

func (m *MockDutyLookup) Lookup(ctx context.Context, code, destinationCountry, originCountry string) (*domain.DutyRates, error) {
	args := m.Called(ctx, code, destinationCountry, originCountry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DutyRates), args.Error(1)
}
