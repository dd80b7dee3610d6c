package usecase

import (
	"context"
	"time"

	"github.com/allisson/keyvault/internal/metrics"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

const metricsDomain = "vault"

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	v.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Save records metrics for secret save operations.
func (v *vaultUseCaseWithMetrics) Save(
	ctx context.Context,
	userID string,
	secret vaultDomain.Secret,
) (*vaultDomain.SaveResult, error) {
	start := time.Now()
	result, err := v.next.Save(ctx, userID, secret)
	v.record(ctx, "secret_save", start, err)
	return result, err
}

// ListAll records metrics for listing operations. Every record that failed to
// decrypt is counted as a secret_decrypt error.
func (v *vaultUseCaseWithMetrics) ListAll(ctx context.Context, userID string) (*vaultDomain.Listing, error) {
	start := time.Now()
	listing, err := v.next.ListAll(ctx, userID)
	v.record(ctx, "secret_list", start, err)

	if listing != nil {
		for range listing.Failures {
			v.metrics.RecordOperation(ctx, metricsDomain, "secret_decrypt", "error")
		}
	}
	return listing, err
}

// DeleteAt records metrics for positional delete operations.
func (v *vaultUseCaseWithMetrics) DeleteAt(ctx context.Context, userID string, index int) error {
	start := time.Now()
	err := v.next.DeleteAt(ctx, userID, index)
	v.record(ctx, "secret_delete", start, err)
	return err
}

// DeleteAtRevision records metrics for conditional positional delete operations.
func (v *vaultUseCaseWithMetrics) DeleteAtRevision(
	ctx context.Context,
	userID string,
	index int,
	revision uint64,
) error {
	start := time.Now()
	err := v.next.DeleteAtRevision(ctx, userID, index, revision)
	v.record(ctx, "secret_delete", start, err)
	return err
}

// DeleteAll records metrics for delete-all operations.
func (v *vaultUseCaseWithMetrics) DeleteAll(ctx context.Context, userID string) error {
	start := time.Now()
	err := v.next.DeleteAll(ctx, userID)
	v.record(ctx, "secret_delete_all", start, err)
	return err
}
