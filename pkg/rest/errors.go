package rest

import (
	"errors"
	"fmt"
)

// Error classes matched by the Is* helpers.
var (
	ErrUnknownMember = errors.New("unknown member")
	ErrConfiguration = errors.New("invalid configuration")
	ErrTransport     = errors.New("transport failure")
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrHostRequired      = errors.New("host is required")
	ErrEndpointRequired  = errors.New("endpoint is required")
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
	ErrInvalidScheme     = errors.New("scheme must be http or https")
	ErrInvalidVerbosity  = errors.New("verbosity must be between 0 and 3")
	ErrInvalidRateLimit  = errors.New("rate limit must not be negative")
	ErrSkipTLSOnlyInDev  = errors.New("skipping TLS verification is only allowed when RESTVERB_DEV_MODE is set")
	ErrClientClosed      = errors.New("client is closed")
	ErrUnsupportedCache  = errors.New("unsupported cache type")
	ErrNATSConfigMissing = errors.New("NATS configuration required for NATS cache")
	ErrCacheMiss         = errors.New("key not found in cache")
)

// UnknownMemberError is returned when a name does not resolve to an HTTP verb.
// No request is attempted.
type UnknownMemberError struct {
	Name string
	// Declared is set when Name is an explicit method rather than a verb.
	Declared bool
}

// Error implements the error interface.
func (e *UnknownMemberError) Error() string {
	if e.Declared {
		return fmt.Sprintf("%s: %q is a declared method, not an HTTP verb", ErrUnknownMember, e.Name)
	}

	return fmt.Sprintf("%s: %q is not a supported HTTP verb (supported: %s)", ErrUnknownMember, e.Name, verbList())
}

// Is matches ErrUnknownMember.
func (e *UnknownMemberError) Is(target error) bool {
	return target == ErrUnknownMember
}

// ConfigurationError reports an invalid client or call setting.
type ConfigurationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrConfiguration, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// TransportError reports that no response was received after all retries.
type TransportError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s after %d attempt(s): %v", ErrTransport, e.Method, e.URL, e.Attempts, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func configError(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}

// IsUnknownMember checks if the error is an unknown member error.
func IsUnknownMember(err error) bool {
	return errors.Is(err, ErrUnknownMember)
}

// IsConfigurationError checks if the error is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsTransportFailure checks if the error is a transport failure.
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrTransport)
}
