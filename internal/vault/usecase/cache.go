package usecase

import (
	"context"
	"sync"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// SecretCache keeps the last listing of a single user so repeated reads skip key
// derivation. It belongs to one caller, such as an interactive CLI session, and is
// never shared between users.
//
// Every mutation made through the cache invalidates it, whether or not it
// succeeded. Mutations made elsewhere are not observed.
type SecretCache struct {
	vault  VaultUseCase
	userID string

	mu      sync.Mutex
	listing *vaultDomain.Listing
}

// NewSecretCache creates a cache for userID on top of vault.
func NewSecretCache(vault VaultUseCase, userID string) *SecretCache {
	return &SecretCache{vault: vault, userID: userID}
}

// Listing returns the cached listing, loading it on first use or after an invalidation.
func (c *SecretCache) Listing(ctx context.Context) (*vaultDomain.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listing != nil {
		return c.listing, nil
	}

	listing, err := c.vault.ListAll(ctx, c.userID)
	if err != nil {
		return nil, err
	}
	c.listing = listing
	return listing, nil
}

// Invalidate drops the cached listing.
func (c *SecretCache) Invalidate() {
	c.mu.Lock()
	c.listing = nil
	c.mu.Unlock()
}

// Save stores a new secret and invalidates the cache.
func (c *SecretCache) Save(ctx context.Context, secret vaultDomain.Secret) (*vaultDomain.SaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.vault.Save(ctx, c.userID, secret)
	c.listing = nil
	return result, err
}

// DeleteAt removes the entry at index. When a listing is cached the delete only
// applies if the collection has not changed since it was read, so the index
// refers to the entry the caller saw.
func (c *SecretCache) DeleteAt(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	revision := vaultDomain.AnyRevision
	if c.listing != nil {
		revision = c.listing.Revision
	}

	err := c.vault.DeleteAtRevision(ctx, c.userID, index, revision)
	c.listing = nil
	return err
}

// DeleteAll removes every secret of the user and invalidates the cache.
func (c *SecretCache) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.vault.DeleteAll(ctx, c.userID)
	c.listing = nil
	return err
}
