package rest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errDialFailed = errors.New("dial tcp: connection refused")

func TestConfigurationError(t *testing.T) {
	t.Parallel()

	err := configError("port", ErrInvalidPort)

	assert.Equal(t, "invalid configuration: port: port must be between 1 and 65535", err.Error())
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsTransportFailure(err))
	assert.ErrorIs(t, err, ErrInvalidPort)
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	err := &TransportError{Method: "GET", URL: "https://example.com:443/api/users", Attempts: 6, Err: errDialFailed}

	assert.Equal(t,
		"transport failure: GET https://example.com:443/api/users after 6 attempt(s): dial tcp: connection refused",
		err.Error())
	assert.True(t, IsTransportFailure(err))
	assert.ErrorIs(t, err, errDialFailed)

	wrapped := fmt.Errorf("listing users: %w", err)
	assert.True(t, IsTransportFailure(wrapped))
	assert.False(t, IsUnknownMember(wrapped))
}

func TestErrorClassesAreDisjoint(t *testing.T) {
	t.Parallel()

	errs := []error{
		&UnknownMemberError{Name: "fetch"},
		configError("host", ErrHostRequired),
		&TransportError{Err: errDialFailed},
	}

	for _, err := range errs {
		matches := 0

		for _, check := range []func(error) bool{IsUnknownMember, IsConfigurationError, IsTransportFailure} {
			if check(err) {
				matches++
			}
		}

		assert.Equal(t, 1, matches, err.Error())
	}
}
