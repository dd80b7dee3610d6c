package storage

import (
	"bytes"
	"context"
	"sync"
)

type memoryKey struct {
	namespace string
	key       string
}

// MemoryStore keeps values in process memory. Values are copied on the way in
// and out so callers cannot alias stored bytes.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[memoryKey][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[memoryKey][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err, "failed to get value")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[memoryKey{namespace, key}]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(value), nil
}

// Put stores a copy of value.
func (m *MemoryStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err, "failed to put value")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[memoryKey{namespace, key}] = bytes.Clone(value)
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err, "failed to delete value")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, memoryKey{namespace, key})
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
