package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

const keepAliveInterval = 30 * time.Second

// Transport executes a prepared request and returns its raw outcome.
// A non-nil error means no HTTP response was obtained.
type Transport interface {
	Execute(ctx context.Context, method, url string, headers http.Header, body []byte) (*Response, error)
}

// TransportConfig configures the retrying transport.
type TransportConfig struct {
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the exponential backoff.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RetryStatuses lists HTTP statuses retried like transport errors.
	RetryStatuses []int

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	TLSConfig      *tls.Config

	// HTTPClient replaces the pooled client built from the timeouts and TLS config.
	HTTPClient *http.Client

	// OnRetry is called before every retry.
	OnRetry func(method string, retry int)
	Logger  Logger
}

// DefaultRetryStatuses returns the gateway and throttling statuses worth retrying.
func DefaultRetryStatuses() []int {
	return []int{
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
}

type attemptsKey struct{}

// RealTransport sends requests over the network through go-retryablehttp.
type RealTransport struct {
	client        *retryablehttp.Client
	retryStatuses []int
	onRetry       func(method string, retry int)
	logger        Logger
}

// NewRealTransport builds the retrying transport.
func NewRealTransport(config TransportConfig) *RealTransport {
	transport := &RealTransport{
		retryStatuses: config.RetryStatuses,
		onRetry:       config.OnRetry,
		logger:        config.Logger,
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = newPooledClient(config)
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = httpClient
	client.Logger = nil
	client.RetryMax = config.RetryMax
	client.RetryWaitMin = config.RetryWaitMin
	client.RetryWaitMax = config.RetryWaitMax
	client.Backoff = retryablehttp.DefaultBackoff
	client.CheckRetry = transport.checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.RequestLogHook = transport.requestLogHook

	transport.client = client

	return transport
}

func newPooledClient(config TransportConfig) *http.Client {
	pooled := cleanhttp.DefaultPooledTransport()
	pooled.DialContext = (&net.Dialer{
		Timeout:   config.ConnectTimeout,
		KeepAlive: keepAliveInterval,
	}).DialContext
	pooled.TLSHandshakeTimeout = config.ConnectTimeout
	pooled.ResponseHeaderTimeout = config.ReadTimeout

	if config.TLSConfig != nil {
		pooled.TLSClientConfig = config.TLSConfig
	}

	return &http.Client{Transport: pooled}
}

// Execute implements Transport.
func (t *RealTransport) Execute(ctx context.Context, method, url string, headers http.Header, body []byte) (*Response, error) {
	attempts := 0
	ctx = context.WithValue(ctx, attemptsKey{}, &attempts)

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, rawBody)
	if err != nil {
		return &Response{}, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range headers {
		req.Header[key] = values
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		return &Response{Attempts: attempts}, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Response{Attempts: attempts}, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
		Attempts:   attempts,
	}, nil
}

// CloseIdleConnections releases pooled connections.
func (t *RealTransport) CloseIdleConnections() {
	t.client.HTTPClient.CloseIdleConnections()
}

func (t *RealTransport) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	if resp != nil && slices.Contains(t.retryStatuses, resp.StatusCode) {
		return true, nil
	}

	return false, nil
}

func (t *RealTransport) requestLogHook(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if counter, ok := req.Context().Value(attemptsKey{}).(*int); ok {
		*counter = attempt + 1
	}

	if attempt == 0 {
		return
	}

	if t.logger != nil {
		t.logger.Warn("Retrying request", map[string]interface{}{
			"method":  req.Method,
			"url":     req.URL.String(),
			"attempt": attempt + 1,
		})
	}

	if t.onRetry != nil {
		t.onRetry(req.Method, attempt)
	}
}

// SimulatedTransport answers every request with 200 and an empty body
// without any network access.
type SimulatedTransport struct{}

// Execute implements Transport.
func (t *SimulatedTransport) Execute(ctx context.Context, method, url string, headers http.Header, body []byte) (*Response, error) {
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
		Body:       []byte{},
	}, nil
}
