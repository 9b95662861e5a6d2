// Package retry runs storage calls with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config holds retry configuration
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool // +/-25% on every delay

	// RetryableErrors decides whether a failed attempt is repeated
	RetryableErrors func(error) bool
}

// DefaultConfig retries every error three times
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableErrors: func(error) bool { return true },
	}
}

// DatabaseConfig returns retry config for the PostgreSQL key-value store
func DatabaseConfig() Config {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.InitialDelay = 50 * time.Millisecond
	config.MaxDelay = time.Second
	config.RetryableErrors = IsRetryable
	return config
}

// ObjectStorageConfig returns retry config for S3-compatible object storage
func ObjectStorageConfig() Config {
	config := DefaultConfig()
	config.InitialDelay = 200 * time.Millisecond
	config.MaxDelay = 3 * time.Second
	config.RetryableErrors = IsRetryable
	return config
}

// Do runs fn until it succeeds, fails with a non-retryable error, or runs out of attempts
func Do(ctx context.Context, config Config, operation string, fn func() error) error {
	_, err := DoWithResult(ctx, config, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions that return a value
func DoWithResult[T any](ctx context.Context, config Config, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return res, nil
		}
		lastErr = err

		if config.RetryableErrors != nil && !config.RetryableErrors(err) {
			return zero, err
		}
		if attempt == config.MaxRetries {
			break
		}

		delay := backoff(attempt, config)
		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", config.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	logger.Error("Operation failed after all retries",
		zap.String("operation", operation),
		zap.Int("max_retries", config.MaxRetries),
		zap.Error(lastErr))

	return zero, fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, lastErr)
}

// backoff returns InitialDelay * Multiplier^attempt, capped at MaxDelay
func backoff(attempt int, config Config) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.Multiplier, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.Jitter {
		spread := delay * 0.25
		//nolint:gosec // G404: jitter does not need crypto/rand
		delay += rand.Float64()*2*spread - spread
	}
	return time.Duration(delay)
}

// IsRetryable reports whether err is worth another attempt.
// Cancellation, deadlines and open circuit breakers are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return true
}
