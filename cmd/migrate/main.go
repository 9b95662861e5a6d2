package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/getmentor/course-feedback-api/config"
	"github.com/getmentor/course-feedback-api/pkg/db"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		ServiceName: "course-feedback-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is not set; migrations only apply to the postgres storage backend")
		os.Exit(1)
	}

	logger.Info("Starting database migrations",
		zap.String("database", redactDatabaseURL(cfg.Database.URL)))

	version, err := db.RunMigrations(cfg.Database.URL, "", "file://migrations")
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database migrations completed successfully", zap.Uint("schema_version", version))
}

// redactDatabaseURL hides the password of a postgres URL
func redactDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "***"
	}
	return u.Redacted()
}
