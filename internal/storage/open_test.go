package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/getmentor/course-feedback-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  &config.Config{Storage: config.StorageConfig{Backend: config.StorageMemory}},
		},
		{
			name: "sqlite",
			cfg: &config.Config{
				Storage: config.StorageConfig{Backend: config.StorageSQLite},
				SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "feedback.db")},
			},
		},
		{
			name:    "unsupported",
			cfg:     &config.Config{Storage: config.StorageConfig{Backend: "redis"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := Open(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer kv.Close()

			assert.IsType(t, &InstrumentedStore{}, kv)
			exerciseKV(t, kv)
		})
	}
}
