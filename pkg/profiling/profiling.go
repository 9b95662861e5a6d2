// Package profiling ships continuous CPU, allocation and lock profiles to Pyroscope.
package profiling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/getmentor/course-feedback-api/config"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

const (
	defaultAppName        = "course-feedback-api"
	defaultUploadInterval = 15 * time.Second
)

var profileTypesByName = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"inuse_space":   {pyroscope.ProfileInuseSpace},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// session locks and the submission store mutex are the interesting contention points
var defaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
}

// InitProfiler starts the profiler and returns its stop function.
// A disabled profiler returns a no-op stop function.
func InitProfiler(cfg config.ProfilingConfig, obs config.ObservabilityConfig, environment string) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	uploadRate := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if uploadRate <= 0 {
		uploadRate = defaultUploadInterval
	}

	profileTypes, err := parseProfileTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	appName := applicationName(cfg.AppName, map[string]string{
		"service_name":    obs.ServiceName,
		"namespace":       obs.ServiceNamespace,
		"environment":     environment,
		"service_version": obs.ServiceVersion,
		"instance":        obs.ServiceInstanceID,
	})

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      uploadRate,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Duration("upload_rate", uploadRate))

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

// parseProfileTypes reads a comma-separated list such as "cpu,mutex"
func parseProfileTypes(value string) ([]pyroscope.ProfileType, error) {
	if strings.TrimSpace(value) == "" {
		return defaultProfileTypes, nil
	}

	var types []pyroscope.ProfileType
	seen := make(map[pyroscope.ProfileType]bool)
	for _, raw := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		mapped, ok := profileTypesByName[name]
		if !ok {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", name)
		}
		for _, t := range mapped {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}

	if len(types) == 0 {
		return defaultProfileTypes, nil
	}
	return types, nil
}

// applicationName renders the Pyroscope app name with its tags, skipping empty ones
func applicationName(base string, tags map[string]string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = defaultAppName
	}

	keys := make([]string, 0, len(tags))
	for k, v := range tags {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return base
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+tags[k])
	}
	return base + "{" + strings.Join(pairs, ",") + "}"
}
