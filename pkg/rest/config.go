package rest

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Config represents client configuration for building a rest.Client.
//
// # Defaults
//
// Port defaults to 443, Scheme to "https", APIPrefix to "/api" and
// MaxRetries to 5. Retries back off exponentially between RetryWaitMin and
// RetryWaitMax.
//
// # TLS
//
// SkipTLSVerify is only honored when the environment variable
// RESTVERB_DEV_MODE is "true" or "1"; otherwise New fails. Do not use it in
// production.
type Config struct {
	// Host is the server hostname or IP address. Required.
	Host string
	// Token is attached as "Authorization: Bearer <token>". Empty means unauthenticated.
	Token string
	// Port of the server. 0 selects 443.
	Port int
	// Scheme is "http" or "https". Empty selects "https".
	Scheme string
	// APIPrefix is the path placed between host and endpoint. Empty selects
	// "/api"; use "/" for no prefix.
	APIPrefix string

	// Verbosity selects the log level of the default logger: 0 error, 1 warn,
	// 2 info, 3 debug. Ignored when Logger is set.
	Verbosity int
	// Logger receives request logs. Nil uses a logrus logger at Verbosity.
	Logger Logger
	// Debug additionally logs every HTTP request and response.
	Debug bool

	// Simulation answers every call with 200 and an empty body, without network access.
	Simulation bool

	// MaxRetries is the number of retries for transport failures. 0 selects
	// the default of 5; a negative value disables retries.
	MaxRetries int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// RetryStatuses lists HTTP statuses that are retried like transport
	// failures. Nil selects 429, 502, 503 and 504.
	RetryStatuses []int

	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers.
	ReadTimeout time.Duration
	// SkipTLSVerify disables certificate verification (development only).
	SkipTLSVerify bool
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// HTTPClient replaces the pooled *http.Client underneath the retry layer.
	HTTPClient *http.Client

	// Cache stores successful GET responses keyed by URL. Nil disables caching.
	Cache Cache
	// CacheTTL is the lifetime of cached responses. 0 selects one minute.
	CacheTTL time.Duration

	// MetricsRegisterer enables Prometheus metrics when set.
	MetricsRegisterer prometheus.Registerer
	// TracerProvider supplies the tracer for request spans. Nil uses the otel global.
	TracerProvider trace.TracerProvider

	// RateLimit caps requests per second. 0 disables limiting.
	RateLimit float64
	// RateBurst is the limiter burst size. 0 selects 1.
	RateBurst int
}

// withDefaults validates c and returns a copy with defaults applied.
func (c *Config) withDefaults() (*Config, error) {
	if c == nil {
		return nil, configError("config", ErrConfigRequired)
	}

	cfg := *c

	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, configError("host", ErrHostRequired)
	}

	if cfg.Port == 0 {
		cfg.Port = constants.DefaultPort
	}

	if cfg.Port < 1 || cfg.Port > constants.MaxPort {
		return nil, configError("port", ErrInvalidPort)
	}

	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))
	if cfg.Scheme == "" {
		cfg.Scheme = constants.DefaultScheme
	}

	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		return nil, configError("scheme", ErrInvalidScheme)
	}

	cfg.APIPrefix = normalizePrefix(cfg.APIPrefix)

	if cfg.Verbosity < constants.VerbosityError || cfg.Verbosity > constants.VerbosityDebug {
		return nil, configError("verbosity", ErrInvalidVerbosity)
	}

	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = constants.DefaultRetryMax
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}

	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = constants.DefaultRetryWaitMin
	}

	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = constants.DefaultRetryWaitMax
	}

	if cfg.RetryWaitMax < cfg.RetryWaitMin {
		cfg.RetryWaitMax = cfg.RetryWaitMin
	}

	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = constants.DefaultConnectTimeout
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = constants.DefaultReadTimeout
	}

	if cfg.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, configError("skip_tls_verify", ErrSkipTLSOnlyInDev)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.DefaultUserAgent
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = constants.DefaultCacheTTL
	}

	if cfg.RateLimit < 0 {
		return nil, configError("rate_limit", ErrInvalidRateLimit)
	}

	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}

	return &cfg, nil
}

// normalizePrefix returns "" for no prefix, otherwise "/a/b" without a trailing slash.
func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return constants.DefaultAPIPrefix
	}

	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}

	return "/" + prefix
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv(constants.DevModeEnv)

	return devMode == constants.BooleanTrue || devMode == "1"
}
