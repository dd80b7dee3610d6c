// Package mocks provides mock implementations of the vault use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// MockVaultUseCase is a mock implementation of VaultUseCase.
type MockVaultUseCase struct {
	mock.Mock
}

// NewMockVaultUseCase creates a MockVaultUseCase whose expectations are asserted on cleanup.
func NewMockVaultUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockVaultUseCase {
	m := &MockVaultUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Save mocks the Save method of VaultUseCase.
func (m *MockVaultUseCase) Save(
	ctx context.Context,
	userID string,
	secret vaultDomain.Secret,
) (*vaultDomain.SaveResult, error) {
	args := m.Called(ctx, userID, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.SaveResult), args.Error(1)
}

// ListAll mocks the ListAll method of VaultUseCase.
func (m *MockVaultUseCase) ListAll(ctx context.Context, userID string) (*vaultDomain.Listing, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Listing), args.Error(1)
}

// DeleteAt mocks the DeleteAt method of VaultUseCase.
func (m *MockVaultUseCase) DeleteAt(ctx context.Context, userID string, index int) error {
	args := m.Called(ctx, userID, index)
	return args.Error(0)
}

// DeleteAtRevision mocks the DeleteAtRevision method of VaultUseCase.
func (m *MockVaultUseCase) DeleteAtRevision(ctx context.Context, userID string, index int, revision uint64) error {
	args := m.Called(ctx, userID, index, revision)
	return args.Error(0)
}

// DeleteAll mocks the DeleteAll method of VaultUseCase.
func (m *MockVaultUseCase) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
