package constants

import "time"

// File permissions.
const (
	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Connection defaults.
const (
	// DefaultPort is the port used when none is configured.
	DefaultPort = 443

	// DefaultScheme is the URL scheme used when none is configured.
	DefaultScheme = "https"

	// DefaultAPIPrefix is the path prefix placed between host and endpoint.
	DefaultAPIPrefix = "/api"

	// MaxPort is the largest valid TCP port.
	MaxPort = 65535

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "restverb/dev"
)

// HTTP and network timeouts.
const (
	// DefaultConnectTimeout bounds dialing and the TLS handshake.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultReadTimeout bounds waiting for response headers.
	DefaultReadTimeout = 120 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK is the lower bound of the success range.
	HTTPStatusOK = 200

	// HTTPStatusLastSuccess is the upper bound of the success range.
	HTTPStatusLastSuccess = 299

	// HTTPStatusBadRequest is the first client error status.
	HTTPStatusBadRequest = 400

	// StatusTransportFailure is reported when no response was received.
	StatusTransportFailure = 0
)

// Verbosity levels.
const (
	VerbosityError = 0
	VerbosityWarn  = 1
	VerbosityInfo  = 2
	VerbosityDebug = 3
)

// Cache defaults.
const (
	// DefaultCacheSize is the default number of cached responses.
	DefaultCacheSize = 256

	// DefaultCacheTTL is how long a cached GET response stays fresh.
	DefaultCacheTTL = 1 * time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used for cached responses.
	DefaultNATSBucket = "restverb_responses"
)

// Environment.
const (
	// DevModeEnv enables development-only settings such as skipping TLS verification.
	DevModeEnv = "RESTVERB_DEV_MODE"

	// EnvPrefix is the viper environment variable prefix.
	EnvPrefix = "RESTVERB"
)

// BooleanTrue is the string form of true accepted in environment variables.
const BooleanTrue = "true"

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)
