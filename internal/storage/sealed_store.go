package storage

import (
	"context"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// SealedStore encrypts every value with a KMS keeper before handing it to the
// wrapped store, on top of the per-record encryption under user-derived keys.
type SealedStore struct {
	next   Store
	keeper cryptoDomain.KMSKeeper
}

// NewSealedStore wraps next with keeper.
func NewSealedStore(next Store, keeper cryptoDomain.KMSKeeper) *SealedStore {
	return &SealedStore{next: next, keeper: keeper}
}

// Get reads and opens the value stored for key.
func (s *SealedStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	sealed, err := s.next.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}

	value, err := s.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, unavailable(err, "failed to open sealed value")
	}
	return value, nil
}

// Put seals value and stores it.
func (s *SealedStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	sealed, err := s.keeper.Encrypt(ctx, value)
	if err != nil {
		return unavailable(err, "failed to seal value")
	}
	return s.next.Put(ctx, namespace, key, sealed)
}

// Delete removes key from the wrapped store.
func (s *SealedStore) Delete(ctx context.Context, namespace, key string) error {
	return s.next.Delete(ctx, namespace, key)
}

// Ping pings the wrapped store.
func (s *SealedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the keeper and the wrapped store.
func (s *SealedStore) Close() error {
	keeperErr := s.keeper.Close()
	if err := s.next.Close(); err != nil {
		return err
	}
	return keeperErr
}
