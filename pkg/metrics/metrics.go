package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every collector exported on /api/metrics
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets for API and storage round trips, milliseconds to tens of seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Storage Client Metrics (submission key-value store)
	StorageRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"backend", "operation", "status"},
	)

	StorageRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// Session Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	FeedbackSessionsStarted = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "course_feedback_sessions_started_total",
			Help: "Total number of feedback form sessions started",
		},
	)

	FeedbackFieldUpdates = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_feedback_field_updates_total",
			Help: "Total number of field updates by field and outcome",
		},
		[]string{"field", "status"},
	)

	FeedbackSubmitAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_feedback_submit_attempts_total",
			Help: "Total number of submit attempts",
		},
		[]string{"status"}, // "ready", "invalid"
	)

	FeedbackSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_feedback_submissions_total",
			Help: "Total number of confirmed feedback submissions",
		},
		[]string{"status", "course"},
	)

	FeedbackConfirmDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "course_feedback_confirm_duration_seconds",
			Help:    "Time to persist a confirmed submission",
			Buckets: CustomAPIBuckets,
		},
	)

	FeedbackProgressAtSubmit = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "course_feedback_progress_at_submit_percent",
			Help:    "Form completion percentage when submit was pressed",
			Buckets: []float64{0, 25, 50, 75, 90, 100},
		},
	)

	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"breaker"},
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
