package mocks

import (
	"context"

	"civicdocs/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Stats(ctx context.Context) (*service.StorageStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StorageStats), args.Error(1)
}
