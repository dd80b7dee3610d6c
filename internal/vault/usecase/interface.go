// Package usecase defines the interfaces and implementations of the API key vault
// operations. Use cases compose key derivation, authenticated encryption and the
// per-user record store.
package usecase

import (
	"context"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// RecordRepository defines the per-user collection persistence operations.
type RecordRepository interface {
	ReadAll(ctx context.Context, userID string) (*vaultDomain.Collection, error)
	AppendOne(ctx context.Context, userID string, record vaultDomain.EncryptedRecord) (int, uint64, error)
	DeleteAt(ctx context.Context, userID string, index int, revision uint64) error
	DeleteAll(ctx context.Context, userID string) error
}

// VaultUseCase defines the operations offered to callers.
type VaultUseCase interface {
	// Save encrypts secret under a freshly derived key and appends it to the user's collection.
	Save(ctx context.Context, userID string, secret vaultDomain.Secret) (*vaultDomain.SaveResult, error)

	// ListAll decrypts every record of the user. Records that fail to decrypt are
	// reported in Listing.Failures and do not fail the call.
	ListAll(ctx context.Context, userID string) (*vaultDomain.Listing, error)

	// DeleteAt removes the record at index in the current collection.
	DeleteAt(ctx context.Context, userID string, index int) error

	// DeleteAtRevision removes the record at index only if the collection still has
	// the given revision.
	DeleteAtRevision(ctx context.Context, userID string, index int, revision uint64) error

	// DeleteAll removes every record of the user. It does not ask for confirmation.
	DeleteAll(ctx context.Context, userID string) error
}
