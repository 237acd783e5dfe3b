package mocks

import (
	"context"
	"io"

	"civicdocs/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, r io.Reader) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, r)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader) storage.ObjectInfo); ok {
		return f(ctx, key, r), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Open(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) AbsPath(key string) string {
	args := m.Called(key)
	return args.String(0)
}
