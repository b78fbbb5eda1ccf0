package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/fivetwenty-io/restverb/internal/auth"
	"github.com/fivetwenty-io/restverb/internal/constants"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is one request handed to the session. URL is fully qualified.
type Request struct {
	Method  string
	URL     string
	Body    interface{}
	Headers map[string]string
}

// Response is the raw outcome of a dispatched request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Attempts is how many times the request went out on the wire.
	Attempts int
	Duration time.Duration
}

// Client is the per-client session: default headers, retry policy and the
// transport strategy chosen at construction.
type Client struct {
	transport    Transport
	tokenManager auth.TokenManager
	logger       Logger
	debug        bool
	userAgent    string

	transportConfig TransportConfig
	simulate        bool
	// notified is set when the token manager refreshes headers on rotation.
	notified bool

	mutex   sync.RWMutex
	headers http.Header
	closed  bool
}

// tokenNotifier is implemented by token managers that report rotations.
type tokenNotifier interface {
	OnChange(fn func(token string))
}

// Option configures the session.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the retry count and the exponential backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.transportConfig.RetryMax = retryMax
		c.transportConfig.RetryWaitMin = waitMin
		c.transportConfig.RetryWaitMax = waitMax
	}
}

// WithRetryStatuses replaces the set of HTTP statuses that are retried.
func WithRetryStatuses(codes ...int) Option {
	return func(c *Client) {
		c.transportConfig.RetryStatuses = codes
	}
}

// WithTimeouts sets the connect and read timeouts of the pooled transport.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		c.transportConfig.ConnectTimeout = connect
		c.transportConfig.ReadTimeout = read
	}
}

// WithTLSConfig sets the TLS configuration of the pooled transport.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(c *Client) {
		c.transportConfig.TLSConfig = tlsConfig
	}
}

// WithHTTPClient replaces the underlying *http.Client used by the retrying transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.transportConfig.HTTPClient = httpClient
	}
}

// WithRetryHook is called before every retry with the method and 1-based retry number.
func WithRetryHook(hook func(method string, retry int)) Option {
	return func(c *Client) {
		c.transportConfig.OnRetry = hook
	}
}

// WithSimulation selects the simulated transport.
func WithSimulation(simulate bool) Option {
	return func(c *Client) {
		c.simulate = simulate
	}
}

// NewClient creates a session. tokenManager may be nil for unauthenticated use.
func NewClient(tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
		transportConfig: TransportConfig{
			RetryMax:       constants.DefaultRetryMax,
			RetryWaitMin:   constants.DefaultRetryWaitMin,
			RetryWaitMax:   constants.DefaultRetryWaitMax,
			RetryStatuses:  DefaultRetryStatuses(),
			ConnectTimeout: constants.DefaultConnectTimeout,
			ReadTimeout:    constants.DefaultReadTimeout,
		},
	}

	if client.tokenManager == nil {
		client.tokenManager = auth.NewStaticTokenManager("")
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.simulate {
		client.transport = &SimulatedTransport{}
	} else {
		client.transportConfig.Logger = client.logger
		client.transport = NewRealTransport(client.transportConfig)
	}

	if notifier, ok := client.tokenManager.(tokenNotifier); ok {
		notifier.OnChange(func(string) {
			client.RefreshHeaders(context.Background())
		})

		client.notified = true
	}

	client.RefreshHeaders(context.Background())

	return client
}

// Simulated reports whether the session never touches the network.
func (c *Client) Simulated() bool {
	_, ok := c.transport.(*SimulatedTransport)

	return ok
}

// RefreshHeaders re-derives the default headers from the token manager.
func (c *Client) RefreshHeaders(ctx context.Context) {
	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)

	token, err := c.tokenManager.GetToken(ctx)

	switch {
	case err != nil:
		if c.logger != nil {
			c.logger.Warn("Token unavailable, sending unauthenticated requests", map[string]interface{}{
				"error": err.Error(),
			})
		}
	case token != "":
		headers.Set("Authorization", "Bearer "+token)
	}

	c.mutex.Lock()
	c.headers = headers
	c.mutex.Unlock()
}

// SetToken rotates the bearer token and re-derives the default headers.
func (c *Client) SetToken(token string) {
	c.tokenManager.SetToken(token)

	if !c.notified {
		c.RefreshHeaders(context.Background())
	}
}

// DefaultHeaders returns a copy of the headers sent with every request.
func (c *Client) DefaultHeaders() http.Header {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.headers.Clone()
}

// Do sends req through the transport. Any HTTP status is a successful exchange;
// a non-nil error means no response was received and StatusCode is 0.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, constants.ErrRequestRequired
	}

	if req.URL == "" {
		return nil, constants.ErrURLRequired
	}

	c.mutex.RLock()
	closed := c.closed
	c.mutex.RUnlock()

	if closed {
		return nil, constants.ErrSessionClosed
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	headers := c.DefaultHeaders()
	if body != nil {
		headers.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":  req.Method,
			"url":     req.URL,
			"headers": maskHeaders(headers),
		})
	}

	start := time.Now()
	resp, err := c.transport.Execute(ctx, req.Method, req.URL, headers, body)

	if resp == nil {
		resp = &Response{}
	}

	resp.Duration = time.Since(start)

	if err != nil {
		resp.StatusCode = constants.StatusTransportFailure

		if c.logger != nil {
			c.logger.Error("HTTP Transport Failure", map[string]interface{}{
				"method":   req.Method,
				"url":      req.URL,
				"attempts": resp.Attempts,
				"error":    err.Error(),
			})
		}

		return resp, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": resp.StatusCode,
			"attempts":    resp.Attempts,
			"duration":    resp.Duration.String(),
		})
	}

	return resp, nil
}

// Close releases pooled connections. Further requests fail with ErrSessionClosed.
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	if closer, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}

	return nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch value := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return value, nil
	case json.RawMessage:
		return value, nil
	case string:
		return []byte(value), nil
	case io.Reader:
		data, err := io.ReadAll(value)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}

		return data, nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		return data, nil
	}
}

func maskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))

	for key := range headers {
		if key == "Authorization" {
			masked[key] = constants.MaskedSecret

			continue
		}

		masked[key] = headers.Get(key)
	}

	return masked
}
