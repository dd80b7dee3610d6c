package storage

import (
	"context"
	"time"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/metrics"
)

// InstrumentedStore records the latency and outcome of every call to the wrapped store.
// A missing key is a normal outcome and is recorded as a success.
type InstrumentedStore struct {
	next    Store
	backend string
	metrics metrics.StoreMetrics
}

// NewInstrumentedStore wraps next. backend labels the recorded measurements.
func NewInstrumentedStore(next Store, backend string, m metrics.StoreMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, metrics: m}
}

func (s *InstrumentedStore) record(ctx context.Context, operation string, start time.Time, err error) {
	if apperrors.Is(err, ErrKeyNotFound) {
		err = nil
	}
	s.metrics.RecordStoreCall(ctx, s.backend, operation, time.Since(start), err)
}

// Get records and delegates Get.
func (s *InstrumentedStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, namespace, key)
	s.record(ctx, "get", start, err)
	return value, err
}

// Put records and delegates Put.
func (s *InstrumentedStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	start := time.Now()
	err := s.next.Put(ctx, namespace, key, value)
	s.record(ctx, "put", start, err)
	return err
}

// Delete records and delegates Delete.
func (s *InstrumentedStore) Delete(ctx context.Context, namespace, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, namespace, key)
	s.record(ctx, "delete", start, err)
	return err
}

// Ping delegates Ping without recording it.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped store.
func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
