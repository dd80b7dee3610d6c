// Package storage implements the durable keyed stores the vault persists its
// collections in. Every backend stores opaque values under a (namespace, key)
// pair and offers no compare-and-swap; callers serialize read-modify-write
// sequences themselves.
package storage

import (
	"context"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

// ErrKeyNotFound indicates no value is stored under the requested key.
var ErrKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "key not found")

// Store is a durable keyed store.
type Store interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Put replaces the value stored under key. A Put is atomic: readers observe
	// either the previous value or the new one.
	Put(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend resources.
	Close() error
}

func unavailable(err error, message string) error {
	return apperrors.Mark(apperrors.ErrUnavailable, err, message)
}
