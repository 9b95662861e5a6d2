package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmentor/course-feedback-api/config"
	"github.com/getmentor/course-feedback-api/internal/catalog"
	"github.com/getmentor/course-feedback-api/internal/handlers"
	"github.com/getmentor/course-feedback-api/internal/middleware"
	"github.com/getmentor/course-feedback-api/internal/repository"
	"github.com/getmentor/course-feedback-api/internal/services"
	"github.com/getmentor/course-feedback-api/internal/storage"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/getmentor/course-feedback-api/pkg/profiling"
	"github.com/getmentor/course-feedback-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	formBodyLimit  = 64 * 1024
	healthCheckKey = "__healthcheck"
)

// registerFormRoutes wires the feedback form endpoints under /api/v1
func registerFormRoutes(group *gin.RouterGroup, h *handlers.FeedbackHandler, formLimiter, submitLimiter *middleware.RateLimiter) {
	forms := group.Group("/forms", formLimiter.Middleware(), middleware.BodySizeLimitMiddleware(formBodyLimit))
	forms.POST("", h.StartSession)
	forms.GET("/:sessionId", h.GetForm)
	forms.PUT("/:sessionId/fields/:field", h.SetField)
	forms.POST("/:sessionId/worked-well", h.ToggleWorkedWell)
	forms.POST("/:sessionId/submit", h.Submit)
	forms.POST("/:sessionId/confirm", submitLimiter.Middleware(), h.Confirm)
	forms.POST("/:sessionId/cancel", h.Cancel)

	group.GET("/submissions", formLimiter.Middleware(), h.ListSubmissions)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting course feedback API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	kv, err := storage.Open(rootCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to open submission storage", zap.Error(err))
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			logger.Error("Failed to close submission storage", zap.Error(closeErr))
		}
	}()

	formCatalog, err := catalog.Load(cfg.Form.InstructorsFile)
	if err != nil {
		logger.Fatal("Failed to load form catalog", zap.Error(err))
	}

	submissionRepo := repository.NewSubmissionRepository(kv, cfg.Storage.Key)
	feedbackService := services.NewFeedbackService(
		submissionRepo,
		formCatalog,
		time.Duration(cfg.Sessions.TTLMinutes)*time.Minute,
	)

	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	healthHandler := handlers.NewHealthHandler(cfg.Storage.Backend, func(ctx context.Context) error {
		_, _, err := kv.Get(ctx, healthCheckKey)
		return err
	})

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://127.0.0.1:3000")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(rootCtx, 50, 100)
	formRateLimiter := middleware.NewRateLimiter(rootCtx, 20, 40) // every keystroke may PUT a field
	submitRateLimiter := middleware.NewRateLimiter(rootCtx, 0.2, 3)

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	registerFormRoutes(router.Group("/api/v1"), feedbackHandler, formRateLimiter, submitRateLimiter)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
