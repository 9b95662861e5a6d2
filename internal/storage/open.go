package storage

import (
	"context"
	"fmt"

	"github.com/getmentor/course-feedback-api/config"
	"github.com/getmentor/course-feedback-api/pkg/db"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/objectstore"
	"go.uber.org/zap"
)

// Open creates the configured backend wrapped with instrumentation
func Open(ctx context.Context, cfg *config.Config) (KV, error) {
	var (
		kv  KV
		err error
	)

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		kv = NewMemoryStore()
	case config.StorageSQLite:
		kv, err = OpenSQLite(ctx, cfg.SQLite.Path)
	case config.StoragePostgres:
		pool, poolErr := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if poolErr != nil {
			return nil, poolErr
		}
		kv = NewPostgresStore(pool, pool.Close)
	case config.StorageS3:
		client, clientErr := objectstore.NewStorageClient(objectstore.Config{
			AccessKeyID:     cfg.ObjectStorage.AccessKeyID,
			SecretAccessKey: cfg.ObjectStorage.SecretAccessKey,
			BucketName:      cfg.ObjectStorage.BucketName,
			Endpoint:        cfg.ObjectStorage.Endpoint,
			Region:          cfg.ObjectStorage.Region,
			Prefix:          cfg.ObjectStorage.Prefix,
		})
		if clientErr != nil {
			return nil, clientErr
		}
		kv = NewObjectStore(client)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	logger.Info("Submission storage ready", zap.String("backend", cfg.Storage.Backend))
	return Instrument(kv, cfg.Storage.Backend), nil
}
