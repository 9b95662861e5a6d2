package services_test

import (
	"testing"

	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// captureLogs routes the package logger into memory at debug level until the
// test ends.
func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

// rejectedUpdates reads the rejected-update counter for one field label
func rejectedUpdates(field string) float64 {
	return testutil.ToFloat64(metrics.FeedbackFieldUpdates.WithLabelValues(field, "rejected"))
}
