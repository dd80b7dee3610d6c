// Package repository persists per-user collections of encrypted records on top of
// a durable keyed store.
package repository

import (
	"context"
	"time"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/keylock"
	"github.com/allisson/keyvault/internal/storage"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// DefaultNamespace is the store namespace collections live in.
const DefaultNamespace = "apiKeys"

// RecordStore keeps each user's collection as one value keyed by user ID.
//
// The backing store has no compare-and-swap, so every read-modify-write holds the
// user's exclusive lock from the read until the write returns. Reads take the
// shared lock and therefore wait for in-flight writes of the same user.
//
// Once the exclusive lock is held the operation no longer follows the caller's
// cancellation: it runs to completion bounded by the store timeout.
type RecordStore struct {
	store     storage.Store
	locks     *keylock.Locker
	namespace string
	timeout   time.Duration
}

// NewRecordStore creates a RecordStore. A zero timeout leaves store calls unbounded.
func NewRecordStore(
	store storage.Store,
	locks *keylock.Locker,
	namespace string,
	timeout time.Duration,
) *RecordStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RecordStore{
		store:     store,
		locks:     locks,
		namespace: namespace,
		timeout:   timeout,
	}
}

// ReadAll returns the user's collection. A user without records gets an empty
// collection, never nil.
func (r *RecordStore) ReadAll(ctx context.Context, userID string) (*vaultDomain.Collection, error) {
	if userID == "" {
		return nil, vaultDomain.ErrInvalidUserID
	}

	unlock, err := r.locks.RLock(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to acquire collection read lock")
	}
	defer unlock()

	return r.load(ctx, userID)
}

// AppendOne appends record and returns its index and the new revision.
func (r *RecordStore) AppendOne(
	ctx context.Context,
	userID string,
	record vaultDomain.EncryptedRecord,
) (int, uint64, error) {
	index := -1
	c, err := r.mutate(ctx, userID, func(c *vaultDomain.Collection) (bool, error) {
		index = c.Append(record)
		return true, nil
	})
	if err != nil {
		return 0, 0, err
	}
	return index, c.Revision, nil
}

// DeleteAt removes the record at index from the current collection. When revision is
// not vaultDomain.AnyRevision it must match the stored revision.
func (r *RecordStore) DeleteAt(ctx context.Context, userID string, index int, revision uint64) error {
	_, err := r.mutate(ctx, userID, func(c *vaultDomain.Collection) (bool, error) {
		if err := c.CheckRevision(revision); err != nil {
			return false, err
		}
		if err := c.RemoveAt(index); err != nil {
			return false, err
		}
		return true, nil
	})
	return err
}

// DeleteAll empties the collection. An already empty collection is left untouched.
//
// The stored value does not have to decode: an unreadable collection is replaced by
// an empty one, keeping its revision when that much can still be read.
func (r *RecordStore) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return vaultDomain.ErrInvalidUserID
	}

	unlock, err := r.locks.Lock(ctx, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to acquire collection write lock")
	}
	defer unlock()

	ctx = context.WithoutCancel(ctx)

	data, found, err := r.fetch(ctx, userID)
	if err != nil || !found {
		return err
	}

	c, err := vaultDomain.UnmarshalCollection(data)
	if err != nil {
		revision, _ := vaultDomain.PeekRevision(data)
		c = vaultDomain.NewCollection()
		c.Revision = revision + 1
		return r.put(ctx, userID, c)
	}
	if !c.Clear() {
		return nil
	}
	return r.put(ctx, userID, c)
}

// mutate runs fn over the current collection under the user's exclusive lock and
// persists the result when fn reports a change.
func (r *RecordStore) mutate(
	ctx context.Context,
	userID string,
	fn func(c *vaultDomain.Collection) (bool, error),
) (*vaultDomain.Collection, error) {
	if userID == "" {
		return nil, vaultDomain.ErrInvalidUserID
	}

	unlock, err := r.locks.Lock(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to acquire collection write lock")
	}
	defer unlock()

	ctx = context.WithoutCancel(ctx)

	c, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed, err := fn(c)
	if err != nil || !changed {
		return c, err
	}

	if err := r.put(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *RecordStore) put(ctx context.Context, userID string, c *vaultDomain.Collection) error {
	data, err := vaultDomain.MarshalCollection(c)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode collection")
	}

	putCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.Put(putCtx, r.namespace, userID, data); err != nil {
		return apperrors.Mark(vaultDomain.ErrStoreUnavailable, err, "failed to write collection")
	}
	return nil
}

func (r *RecordStore) load(ctx context.Context, userID string) (*vaultDomain.Collection, error) {
	data, found, err := r.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return vaultDomain.NewCollection(), nil
	}
	return vaultDomain.UnmarshalCollection(data)
}

// fetch returns the raw stored collection. found is false when the user has none.
func (r *RecordStore) fetch(ctx context.Context, userID string) ([]byte, bool, error) {
	getCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := r.store.Get(getCtx, r.namespace, userID)
	if err != nil {
		if apperrors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, apperrors.Mark(vaultDomain.ErrStoreUnavailable, err, "failed to read collection")
	}
	return data, true, nil
}

func (r *RecordStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}
