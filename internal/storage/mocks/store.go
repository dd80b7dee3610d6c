// Package mocks provides mock implementations of storage.Store for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of storage.Store.
type MockStore struct {
	mock.Mock
}

// Get mocks the Get method of Store.
func (m *MockStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	args := m.Called(ctx, namespace, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Put mocks the Put method of Store.
func (m *MockStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	args := m.Called(ctx, namespace, key, value)
	return args.Error(0)
}

// Delete mocks the Delete method of Store.
func (m *MockStore) Delete(ctx context.Context, namespace, key string) error {
	args := m.Called(ctx, namespace, key)
	return args.Error(0)
}

// Ping mocks the Ping method of Store.
func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks the Close method of Store.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
