package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/getmentor/course-feedback-api/pkg/circuitbreaker"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/getmentor/course-feedback-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const backendName = "s3"

// ErrObjectNotFound is returned when the requested key does not exist in the bucket
var ErrObjectNotFound = errors.New("object not found")

// API is the subset of the S3 client used here
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the connection settings for an S3-compatible bucket
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	Prefix          string
}

// StorageClient stores small JSON documents in an S3-compatible bucket (Yandex Object Storage by default)
type StorageClient struct {
	api        API
	bucketName string
	prefix     string
	breaker    *gobreaker.CircuitBreaker
}

// NewStorageClient creates a new object storage client using the S3 SDK
func NewStorageClient(cfg Config) (*StorageClient, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	// Default endpoint if not provided
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://storage.yandexcloud.net"
	}

	// Default region if not provided
	if cfg.Region == "" {
		cfg.Region = "ru-central1"
	}

	s3Client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed
		),
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
		zap.String("prefix", cfg.Prefix),
	)

	return NewWithAPI(s3Client, cfg.BucketName, cfg.Prefix), nil
}

// NewWithAPI wraps an existing S3 API implementation
func NewWithAPI(api API, bucketName, prefix string) *StorageClient {
	return &StorageClient{
		api:        api,
		bucketName: bucketName,
		prefix:     prefix,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("object-storage")),
	}
}

// ObjectKey maps a logical key to the object key inside the bucket
func (s *StorageClient) ObjectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/") + ".json"
}

// Download fetches the object stored under key. Missing objects yield ErrObjectNotFound.
func (s *StorageClient) Download(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	operation := "getObject"
	objectKey := s.ObjectKey(key)

	data, err := retry.DoWithResult(ctx, retry.ObjectStorageConfig(), operation, func() ([]byte, error) {
		return circuitbreaker.Execute(s.breaker, func() ([]byte, error) {
			out, getErr := s.api.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(s.bucketName),
				Key:    aws.String(objectKey),
			})
			if getErr != nil {
				if isNotFound(getErr) {
					// absence is an answer, not a backend failure
					return nil, nil
				}
				return nil, getErr
			}
			defer out.Body.Close()
			return io.ReadAll(out.Body)
		})
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		s.record(operation, "error", duration)
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", objectKey),
			zap.String("breaker_state", circuitbreaker.GetState(s.breaker)),
		)
		return nil, fmt.Errorf("failed to download %s: %w", objectKey, err)
	}
	if data == nil {
		s.record(operation, "not_found", duration)
		return nil, ErrObjectNotFound
	}

	s.record(operation, "success", duration)
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", objectKey),
		zap.Int("size_bytes", len(data)),
	)
	return data, nil
}

// Upload writes data under key, replacing any previous object
func (s *StorageClient) Upload(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	operation := "putObject"
	objectKey := s.ObjectKey(key)

	err := retry.Do(ctx, retry.ObjectStorageConfig(), operation, func() error {
		_, execErr := circuitbreaker.Execute(s.breaker, func() (*s3.PutObjectOutput, error) {
			return s.api.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.bucketName),
				Key:         aws.String(objectKey),
				Body:        bytes.NewReader(data),
				ContentType: aws.String("application/json"),
			})
		})
		return execErr
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		s.record(operation, "error", duration)
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", objectKey),
			zap.String("breaker_state", circuitbreaker.GetState(s.breaker)),
		)
		return fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	s.record(operation, "success", duration)
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", objectKey),
		zap.Int("size_bytes", len(data)),
	)
	return nil
}

func (s *StorageClient) record(operation, status string, duration float64) {
	metrics.StorageRequestDuration.WithLabelValues(backendName, operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(backendName, operation, status).Inc()
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
