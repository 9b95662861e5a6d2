package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// redactedQueryParams never reach the logs
var redactedQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"email": true, "api_key": true, "apikey": true,
}

// ObservabilityMiddleware records request metrics and writes one access log line per request
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// route is unknown until after c.Next, so in-flight requests are labelled by method only
		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		duration := metrics.MeasureDuration(start)
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusStr).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusStr).Inc()

		fields := []zap.Field{
			zap.String("route", route),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
		if status >= 400 {
			fields = append(fields, errorFields(c)...)
		}

		logger.LogHTTPRequest(method, c.Request.URL.Path, status, duration, fields...)
	}
}

func errorFields(c *gin.Context) []zap.Field {
	var fields []zap.Field
	if query := c.Request.URL.Query(); len(query) > 0 {
		kept := make(map[string]string, len(query))
		for k, v := range query {
			if !redactedQueryParams[strings.ToLower(k)] && len(v) > 0 {
				kept[k] = v[0]
			}
		}
		if len(kept) > 0 {
			fields = append(fields, zap.Any("query_params", kept))
		}
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}
	return fields
}
