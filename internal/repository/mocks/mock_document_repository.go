package mocks

import (
	"context"
	"time"

	"civicdocs/internal/model"
	"civicdocs/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByRequest(ctx context.Context, requestID int64) ([]model.Document, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListExpired(ctx context.Context, now time.Time) ([]model.Document, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id int64, to model.Status) (bool, error) {
	args := m.Called(ctx, id, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) UpdateVerification(ctx context.Context, id int64, verifiedBy int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, verifiedBy, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Stats(ctx context.Context) (*repository.StatsResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.StatsResult), args.Error(1)
}
