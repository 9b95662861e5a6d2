package profiling

import (
	"testing"

	"github.com/getmentor/course-feedback-api/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []pyroscope.ProfileType
	}{
		{name: "empty uses defaults", value: "", want: defaultProfileTypes},
		{name: "only separators uses defaults", value: " , ,", want: defaultProfileTypes},
		{
			name:  "custom list",
			value: "cpu, alloc_space,mutex",
			want: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
			},
		},
		{name: "duplicates collapse", value: "CPU,cpu", want: []pyroscope.ProfileType{pyroscope.ProfileCPU}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProfileTypes(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProfileTypes_Invalid(t *testing.T) {
	_, err := parseProfileTypes("cpu,unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported O11Y_PROFILING_SAMPLE_TYPES")
}

func TestApplicationName(t *testing.T) {
	got := applicationName("", map[string]string{
		"service_name": "course-feedback-api",
		"environment":  "production",
		"instance":     "",
	})
	assert.Equal(t, "course-feedback-api{environment=production,service_name=course-feedback-api}", got)

	assert.Equal(t, "feedback-staging", applicationName(" feedback-staging ", nil))
}

func TestInitProfiler_Disabled(t *testing.T) {
	stop, err := InitProfiler(config.ProfilingConfig{}, config.ObservabilityConfig{}, "development")
	require.NoError(t, err)
	require.NotNil(t, stop)
	stop()
}

func TestInitProfiler_MissingEndpoint(t *testing.T) {
	_, err := InitProfiler(config.ProfilingConfig{Enabled: true, Endpoint: " "}, config.ObservabilityConfig{}, "development")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is required")
}
