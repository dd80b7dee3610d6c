package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

// NewMockRecordRepository creates a MockRecordRepository whose expectations are asserted on cleanup.
func NewMockRecordRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRecordRepository {
	m := &MockRecordRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ReadAll mocks the ReadAll method of RecordRepository.
func (m *MockRecordRepository) ReadAll(ctx context.Context, userID string) (*vaultDomain.Collection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Collection), args.Error(1)
}

// AppendOne mocks the AppendOne method of RecordRepository.
func (m *MockRecordRepository) AppendOne(
	ctx context.Context,
	userID string,
	record vaultDomain.EncryptedRecord,
) (int, uint64, error) {
	args := m.Called(ctx, userID, record)
	return args.Int(0), args.Get(1).(uint64), args.Error(2)
}

// DeleteAt mocks the DeleteAt method of RecordRepository.
func (m *MockRecordRepository) DeleteAt(ctx context.Context, userID string, index int, revision uint64) error {
	args := m.Called(ctx, userID, index, revision)
	return args.Error(0)
}

// DeleteAll mocks the DeleteAll method of RecordRepository.
func (m *MockRecordRepository) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
