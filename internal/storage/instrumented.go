package storage

import (
	"context"
	"time"

	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/getmentor/course-feedback-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// InstrumentedStore records metrics, logs and spans around another KV
type InstrumentedStore struct {
	next    KV
	backend string
}

// Instrument wraps next, labelling everything with backend
func Instrument(next KV, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "storage.Get")
	defer span.End()
	span.SetAttributes(attribute.String("storage.backend", s.backend), attribute.String("storage.key", key))

	start := time.Now()
	value, found, err := s.next.Get(ctx, key)
	status := "success"
	switch {
	case err != nil:
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !found:
		status = "not_found"
	}
	s.observe("get", status, start, key, err, zap.Int("size_bytes", len(value)))
	return value, found, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := tracing.StartSpan(ctx, "storage.Set")
	defer span.End()
	span.SetAttributes(attribute.String("storage.backend", s.backend), attribute.String("storage.key", key))

	start := time.Now()
	err := s.next.Set(ctx, key, value)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.observe("set", status, start, key, err, zap.Int("size_bytes", len(value)))
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}

func (s *InstrumentedStore) observe(operation, status string, start time.Time, key string, err error, fields ...zap.Field) {
	duration := metrics.MeasureDuration(start)
	metrics.StorageRequestDuration.WithLabelValues(s.backend, operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(s.backend, operation, status).Inc()

	fields = append(fields, zap.String("key", key))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.LogAPICall("kv_"+s.backend, operation, status, duration, fields...)
}
