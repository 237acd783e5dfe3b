package mocks

import (
	"context"

	"civicdocs/internal/model"
	"civicdocs/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ListByRequest(ctx context.Context, requestID int64) ([]service.DocumentListItem, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DocumentListItem), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id int64) (string, string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockDocumentService) Verify(ctx context.Context, id int64, verifierID int64) error {
	args := m.Called(ctx, id, verifierID)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, id int64, actorID int64, actorRole string) error {
	args := m.Called(ctx, id, actorID, actorRole)
	return args.Error(0)
}
