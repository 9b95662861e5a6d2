package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends for submitted feedback
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Database      DatabaseConfig
	SQLite        SQLiteConfig
	ObjectStorage ObjectStorageConfig
	Sessions      SessionConfig
	Form          FormConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type StorageConfig struct {
	Backend string
	Key     string // key holding the submissions collection
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type SQLiteConfig struct {
	Path string
}

type ObjectStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	Prefix          string
}

type SessionConfig struct {
	TTLMinutes int
}

type FormConfig struct {
	InstructorsFile string // optional YAML catalogue of suggested instructors
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STORAGE_BACKEND", StorageSQLite)
	v.SetDefault("STORAGE_KEY", "feedback_submissions")
	v.SetDefault("SQLITE_PATH", "data/feedback.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("OBJECT_STORAGE_ENDPOINT", "https://storage.yandexcloud.net")
	v.SetDefault("OBJECT_STORAGE_REGION", "ru-central1")
	v.SetDefault("OBJECT_STORAGE_PREFIX", "course-feedback/")
	v.SetDefault("SESSION_TTL_MINUTES", 120)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "course-feedback-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "course-feedback")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "course-feedback-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			Key:     v.GetString("STORAGE_KEY"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MinConns: v.GetInt32("DB_MIN_CONNS"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		ObjectStorage: ObjectStorageConfig{
			AccessKeyID:     v.GetString("OBJECT_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("OBJECT_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("OBJECT_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("OBJECT_STORAGE_ENDPOINT"),
			Region:          v.GetString("OBJECT_STORAGE_REGION"),
			Prefix:          v.GetString("OBJECT_STORAGE_PREFIX"),
		},
		Sessions: SessionConfig{
			TTLMinutes: v.GetInt("SESSION_TTL_MINUTES"),
		},
		Form: FormConfig{
			InstructorsFile: v.GetString("FORM_INSTRUCTORS_FILE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated value, dropping empty entries
func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	// Storage configuration
	if c.Storage.Key == "" {
		return fmt.Errorf("STORAGE_KEY is required")
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case StoragePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case StorageS3:
		if c.ObjectStorage.BucketName == "" {
			return fmt.Errorf("OBJECT_STORAGE_BUCKET_NAME is required when STORAGE_BACKEND=s3")
		}
		if c.ObjectStorage.AccessKeyID == "" || c.ObjectStorage.SecretAccessKey == "" {
			return fmt.Errorf("OBJECT_STORAGE_ACCESS_KEY_ID and OBJECT_STORAGE_SECRET_ACCESS_KEY are required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q (memory, sqlite, postgres, s3)", c.Storage.Backend)
	}

	if c.Sessions.TTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
