package constants

import "errors"

// Session errors.
var (
	ErrSessionClosed   = errors.New("session is closed")
	ErrRequestRequired = errors.New("request is required")
	ErrURLRequired     = errors.New("request URL is required")
)

// Configuration errors.
var (
	ErrNATSURLRequired   = errors.New("NATS URL is required for the NATS cache")
	ErrInvalidParameter  = errors.New("invalid parameter, expected key=value")
	ErrInvalidOutputType = errors.New("invalid output format")
	ErrTokenInputEmpty   = errors.New("no token entered")
)
