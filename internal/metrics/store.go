package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreMetrics records calls made to the durable store backend.
type StoreMetrics interface {
	RecordStoreCall(ctx context.Context, backend, operation string, duration time.Duration, err error)
}

type storeMetrics struct {
	callCounter   metric.Int64Counter
	durationHisto metric.Float64Histogram
}

// NewStoreMetrics creates a StoreMetrics implementation using the provided meter provider.
func NewStoreMetrics(meterProvider metric.MeterProvider, namespace string) (StoreMetrics, error) {
	meter := meterProvider.Meter(namespace)

	callCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_store_calls_total", namespace),
		metric.WithDescription("Total number of durable store calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store call counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_store_call_duration_seconds", namespace),
		metric.WithDescription("Duration of durable store calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store duration histogram: %w", err)
	}

	return &storeMetrics{callCounter: callCounter, durationHisto: durationHisto}, nil
}

func (s *storeMetrics) RecordStoreCall(
	ctx context.Context,
	backend, operation string,
	duration time.Duration,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}

	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	s.callCounter.Add(ctx, 1, attrs)
	s.durationHisto.Record(ctx, duration.Seconds(), attrs)
}

// NoOpStoreMetrics discards store call measurements.
type NoOpStoreMetrics struct{}

// RecordStoreCall does nothing.
func (NoOpStoreMetrics) RecordStoreCall(context.Context, string, string, time.Duration, error) {}
