package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRetentionService struct {
	mock.Mock
}

func (m *MockRetentionService) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
