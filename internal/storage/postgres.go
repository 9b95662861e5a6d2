package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/getmentor/course-feedback-api/pkg/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the part of pgxpool.Pool the store needs
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore persists values in the kv_store table created by migrations
type PostgresStore struct {
	pool    pgxQuerier
	closeFn func()
}

// NewPostgresStore creates a store on top of an open pool. closeFn may be nil.
func NewPostgresStore(pool pgxQuerier, closeFn func()) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		closeFn: closeFn,
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	type row struct {
		value []byte
		found bool
	}

	result, err := retry.DoWithResult(ctx, retry.DatabaseConfig(), "kv_get", func() (row, error) {
		var value []byte
		scanErr := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return row{}, nil
			}
			return row{}, scanErr
		}
		return row{value: value, found: true}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return result.value, result.found, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	err := retry.Do(ctx, retry.DatabaseConfig(), "kv_set", func() error {
		_, execErr := s.pool.Exec(ctx, query, key, value)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
