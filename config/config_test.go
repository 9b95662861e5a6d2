package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			config: &Config{
				Server: ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "release mode",
			config: &Config{
				Server: ServerConfig{GinMode: "release", AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	assert.True(t, (&Config{Server: ServerConfig{AppEnv: "production"}}).IsProduction())
	assert.False(t, (&Config{Server: ServerConfig{AppEnv: "staging"}}).IsProduction())
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8081",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Storage:  StorageConfig{Backend: StorageMemory, Key: "feedback_submissions"},
		Sessions: SessionConfig{TTLMinutes: 60},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid memory config",
			mutate: func(c *Config) {},
		},
		{
			name:     "missing port",
			mutate:   func(c *Config) { c.Server.Port = "" },
			errorMsg: "PORT is required",
		},
		{
			name:     "missing origins",
			mutate:   func(c *Config) { c.Server.AllowedOrigins = nil },
			errorMsg: "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name:     "missing storage key",
			mutate:   func(c *Config) { c.Storage.Key = "" },
			errorMsg: "STORAGE_KEY is required",
		},
		{
			name:     "unknown backend",
			mutate:   func(c *Config) { c.Storage.Backend = "redis" },
			errorMsg: "unsupported STORAGE_BACKEND",
		},
		{
			name:     "sqlite without path",
			mutate:   func(c *Config) { c.Storage.Backend = StorageSQLite },
			errorMsg: "SQLITE_PATH is required",
		},
		{
			name:     "postgres without url",
			mutate:   func(c *Config) { c.Storage.Backend = StoragePostgres },
			errorMsg: "DATABASE_URL is required",
		},
		{
			name: "postgres with url",
			mutate: func(c *Config) {
				c.Storage.Backend = StoragePostgres
				c.Database.URL = "postgres://localhost/feedback"
			},
		},
		{
			name: "s3 without credentials",
			mutate: func(c *Config) {
				c.Storage.Backend = StorageS3
				c.ObjectStorage.BucketName = "feedback"
			},
			errorMsg: "OBJECT_STORAGE_ACCESS_KEY_ID",
		},
		{
			name:     "non-positive session ttl",
			mutate:   func(c *Config) { c.Sessions.TTLMinutes = 0 },
			errorMsg: "SESSION_TTL_MINUTES must be positive",
		},
		{
			name:     "profiling without endpoint",
			mutate:   func(c *Config) { c.Profiling.Enabled = true },
			errorMsg: "O11Y_PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

// chdirTemp moves into an empty directory so no stray .env file is picked up
func chdirTemp(t *testing.T) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
}

func TestLoad_WithDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, "feedback_submissions", cfg.Storage.Key)
	assert.Equal(t, "data/feedback.db", cfg.SQLite.Path)
	assert.Equal(t, 120, cfg.Sessions.TTLMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://feedback@localhost/feedback")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("SESSION_TTL_MINUTES", "30")
	t.Setenv("FORM_INSTRUCTORS_FILE", "instructors.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://feedback@localhost/feedback", cfg.Database.URL)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 30, cfg.Sessions.TTLMinutes)
	assert.Equal(t, "instructors.yaml", cfg.Form.InstructorsFile)
}

func TestLoad_ValidationFailure(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORAGE_BACKEND", StorageS3)

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
