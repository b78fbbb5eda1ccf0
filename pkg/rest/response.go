package rest

import (
	"net/http"
	"time"

	"github.com/fivetwenty-io/restverb/internal/constants"
	restverbhttp "github.com/fivetwenty-io/restverb/internal/http"
)

// Response is the uniform result of every call.
type Response struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int `json:"status_code" yaml:"status_code"`
	// Data is the raw body; empty when the response had none.
	Data string `json:"data" yaml:"data"`
	// OK is true exactly when StatusCode is in 200..299.
	OK bool `json:"ok" yaml:"ok"`

	Headers  http.Header   `json:"-" yaml:"-"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// IsOK reports whether status is a 2xx code.
func IsOK(status int) bool {
	return status >= constants.HTTPStatusOK && status <= constants.HTTPStatusLastSuccess
}

// TransportFailed reports whether the call never got a response.
func (r *Response) TransportFailed() bool {
	return r.StatusCode == constants.StatusTransportFailure
}

// normalize converts the raw session outcome into a Response. A nil raw
// outcome or a transport error yields the StatusCode 0 sentinel.
func normalize(raw *restverbhttp.Response, transportErr error) *Response {
	if raw == nil || transportErr != nil {
		resp := &Response{StatusCode: constants.StatusTransportFailure}
		if raw != nil {
			resp.Duration = raw.Duration
		}

		return resp
	}

	headers := raw.Headers
	if headers == nil {
		headers = make(http.Header)
	}

	return &Response{
		StatusCode: raw.StatusCode,
		Data:       string(raw.Body),
		OK:         IsOK(raw.StatusCode),
		Headers:    headers,
		Duration:   raw.Duration,
	}
}
