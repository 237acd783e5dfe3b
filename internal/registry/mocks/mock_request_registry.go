package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRequestRegistry struct {
	mock.Mock
}

func (m *MockRequestRegistry) Exists(ctx context.Context, requestID int64) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}
