package rest

import (
	"testing"
	"time"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	original := &Config{Host: " example.com "}

	cfg, err := original.withDefaults()
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, "https", cfg.Scheme)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, constants.DefaultRetryMax, cfg.MaxRetries)
	assert.Equal(t, constants.DefaultRetryWaitMin, cfg.RetryWaitMin)
	assert.Equal(t, constants.DefaultRetryWaitMax, cfg.RetryWaitMax)
	assert.Equal(t, constants.DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, constants.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 1, cfg.RateBurst)

	// the caller's value is not modified
	assert.Equal(t, " example.com ", original.Host)
	assert.Zero(t, original.Port)
}

func TestConfig_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *Config
		expected error
	}{
		{"nil config", nil, ErrConfigRequired},
		{"missing host", &Config{}, ErrHostRequired},
		{"blank host", &Config{Host: "  "}, ErrHostRequired},
		{"port too large", &Config{Host: "h", Port: 70000}, ErrInvalidPort},
		{"negative port", &Config{Host: "h", Port: -1}, ErrInvalidPort},
		{"bad scheme", &Config{Host: "h", Scheme: "ftp"}, ErrInvalidScheme},
		{"verbosity too high", &Config{Host: "h", Verbosity: 4}, ErrInvalidVerbosity},
		{"negative rate limit", &Config{Host: "h", RateLimit: -1}, ErrInvalidRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.config.withDefaults()
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestConfig_Retries(t *testing.T) {
	t.Parallel()

	cfg, err := (&Config{Host: "h", MaxRetries: -1}).withDefaults()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)

	cfg, err = (&Config{Host: "h", MaxRetries: 2, RetryWaitMin: time.Second, RetryWaitMax: time.Millisecond}).withDefaults()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryWaitMax)
}

func TestConfig_SchemeIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg, err := (&Config{Host: "h", Scheme: "HTTP", Port: 8080}).withDefaults()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Scheme)
	assert.Equal(t, 8080, cfg.Port)
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", "/api"},
		{"/", ""},
		{"api", "/api"},
		{"/v2/", "/v2"},
		{"api/v1", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, normalizePrefix(tt.input))
		})
	}
}

//nolint:paralleltest // t.Setenv is incompatible with t.Parallel
func TestConfig_SkipTLSVerify(t *testing.T) {
	t.Setenv(constants.DevModeEnv, "")

	_, err := (&Config{Host: "h", SkipTLSVerify: true}).withDefaults()
	require.ErrorIs(t, err, ErrSkipTLSOnlyInDev)

	t.Setenv(constants.DevModeEnv, "true")

	cfg, err := (&Config{Host: "h", SkipTLSVerify: true}).withDefaults()
	require.NoError(t, err)
	assert.True(t, cfg.SkipTLSVerify)
}
