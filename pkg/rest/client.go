package rest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/restverb/internal/auth"
	"github.com/fivetwenty-io/restverb/internal/constants"
	restverbhttp "github.com/fivetwenty-io/restverb/internal/http"
	"golang.org/x/time/rate"
)

// VerbFunc performs one call with a resolved verb.
type VerbFunc func(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error)

// Client is a REST client whose calls are named by HTTP verb.
type Client struct {
	target  Target
	config  *Config
	session *restverbhttp.Client
	logger  Logger
	cache   Cache
	metrics *MetricsCollector
	tracer  *tracer
	limiter *rate.Limiter

	mutex  sync.RWMutex
	closed bool
}

// New validates cfg and creates a client. The configuration is copied.
func New(cfg *Config) (*Client, error) {
	config, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = NewLogrusLogger(config.Verbosity)
	}

	client := &Client{
		target: Target{
			Scheme:    config.Scheme,
			Host:      config.Host,
			Port:      config.Port,
			APIPrefix: config.APIPrefix,
		},
		config: config,
		logger: logger,
		cache:  config.Cache,
		tracer: newTracer(config.TracerProvider),
	}

	if config.MetricsRegisterer != nil {
		client.metrics, err = NewMetricsCollector(config.MetricsRegisterer)
		if err != nil {
			return nil, err
		}
	}

	if config.RateLimit > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}

	client.session = restverbhttp.NewClient(auth.NewStaticTokenManager(config.Token), client.sessionOptions()...)

	return client, nil
}

func (c *Client) sessionOptions() []restverbhttp.Option {
	config := c.config

	opts := []restverbhttp.Option{
		restverbhttp.WithLogger(c.logger),
		restverbhttp.WithDebug(config.Debug),
		restverbhttp.WithUserAgent(config.UserAgent),
		restverbhttp.WithRetryConfig(config.MaxRetries, config.RetryWaitMin, config.RetryWaitMax),
		restverbhttp.WithTimeouts(config.ConnectTimeout, config.ReadTimeout),
		restverbhttp.WithSimulation(config.Simulation),
	}

	if config.RetryStatuses != nil {
		opts = append(opts, restverbhttp.WithRetryStatuses(config.RetryStatuses...))
	}

	if config.SkipTLSVerify {
		opts = append(opts, restverbhttp.WithTLSConfig(&tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // gated by RESTVERB_DEV_MODE
		}))
	}

	if config.HTTPClient != nil {
		opts = append(opts, restverbhttp.WithHTTPClient(config.HTTPClient))
	}

	if c.metrics != nil {
		opts = append(opts, restverbhttp.WithRetryHook(func(method string, _ int) {
			c.metrics.IncrementRetries(method)
		}))
	}

	return opts
}

// Host returns the configured host.
func (c *Client) Host() string {
	return c.target.Host
}

// Scheme returns the configured scheme.
func (c *Client) Scheme() string {
	return c.target.Scheme
}

// Port returns the configured port.
func (c *Client) Port() int {
	return c.target.Port
}

// APIPrefix returns the normalized path prefix ("" when none).
func (c *Client) APIPrefix() string {
	return c.target.APIPrefix
}

// BaseURL returns "{scheme}://{host}:{port}{prefix}".
func (c *Client) BaseURL() string {
	return c.target.Base()
}

// Simulated reports whether the client answers without network access.
func (c *Client) Simulated() bool {
	return c.session.Simulated()
}

// Method resolves name to a verb call. Matching is case-insensitive. The part
// before the first "_" is the verb; remaining non-empty parts become leading
// path elements, so "get_devices" calls GET {base}/devices/{endpoint}.
func (c *Client) Method(name string) (VerbFunc, error) {
	trimmed := strings.TrimSpace(name)
	parts := strings.Split(trimmed, "_")

	verb, err := ParseVerb(parts[0])
	if err != nil {
		folded := strings.ToLower(strings.ReplaceAll(trimmed, "_", ""))

		return nil, &UnknownMemberError{Name: name, Declared: declaredMembers[folded]}
	}

	var fragments []string

	for _, part := range parts[1:] {
		if part != "" {
			fragments = append(fragments, part)
		}
	}

	return func(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
		return c.call(ctx, verb, fragments, endpoint, opts)
	}, nil
}

// Get performs a GET call.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbGet, nil, endpoint, opts)
}

// Post performs a POST call.
func (c *Client) Post(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbPost, nil, endpoint, opts)
}

// Put performs a PUT call.
func (c *Client) Put(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbPut, nil, endpoint, opts)
}

// Patch performs a PATCH call.
func (c *Client) Patch(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbPatch, nil, endpoint, opts)
}

// Delete performs a DELETE call.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbDelete, nil, endpoint, opts)
}

// Head performs a HEAD call.
func (c *Client) Head(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbHead, nil, endpoint, opts)
}

// Options performs an OPTIONS call.
func (c *Client) Options(ctx context.Context, endpoint string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, VerbOptions, nil, endpoint, opts)
}

// Query performs a call with the verb given as a string. An empty verb means GET.
//
// endpoint is a single path element: a "/" inside it is percent-encoded, so
// Query(ctx, "v3/apps", ...) requests ".../v3%2Fapps". Address nested resources
// with Method("get_v3") and the endpoint "apps", or with a verb method and
// WithSegments.
func (c *Client) Query(ctx context.Context, endpoint, verb string, body interface{}, params Params) (*Response, error) {
	resolved := VerbGet

	if strings.TrimSpace(verb) != "" {
		var err error

		resolved, err = ParseVerb(verb)
		if err != nil {
			return nil, err
		}
	}

	return c.call(ctx, resolved, nil, endpoint, []CallOption{WithBody(body), WithParams(params)})
}

// SetToken replaces the bearer token used by subsequent calls. An empty
// token sends unauthenticated requests. Cached GET responses fetched with
// another token are not served afterwards.
func (c *Client) SetToken(token string) {
	c.session.SetToken(token)
}

// Close releases pooled connections. Later calls fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()

		return nil
	}

	c.closed = true
	c.mutex.Unlock()

	return c.session.Close()
}

func (c *Client) isClosed() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.closed
}

func (c *Client) call(ctx context.Context, verb Verb, fragments []string, endpoint string, opts []CallOption) (*Response, error) {
	options := applyCallOptions(opts)

	elements := append([]string{}, fragments...)

	endpoint = strings.TrimPrefix(endpoint, "/")
	if endpoint != "" {
		elements = append(elements, endpoint)
	}

	if len(elements) == 0 {
		return nil, configError("endpoint", ErrEndpointRequired)
	}

	elements = append(elements, options.segments...)

	return c.execute(ctx, verb, buildURL(c.target, elements, options.params), EncodeQuery(options.params), options)
}

// execute runs the request pipeline: rate limit, span, logs, cache, session, metrics.
func (c *Client) execute(ctx context.Context, verb Verb, rawURL, encodedQuery string, options *callOptions) (*Response, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}

	method := verb.Method()

	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	ctx, span, traceHeaders := c.tracer.start(ctx, method, rawURL, c.Simulated())

	if encodedQuery != "" {
		c.logger.Debug("Query", map[string]interface{}{
			"query": encodedQuery,
		})
	}

	c.logger.Info("Final URL", map[string]interface{}{
		"url":    rawURL,
		"method": method,
	})

	start := time.Now()

	identity := c.cacheIdentity()
	cacheable := len(options.headers) == 0

	if cached := c.lookupCache(ctx, verb, rawURL, identity, cacheable); cached != nil {
		cached.Duration = time.Since(start)

		c.tracer.cacheHit(span)
		c.tracer.end(span, cached, 0, nil)

		return cached, nil
	}

	headers := traceHeaders
	for key, value := range options.headers {
		headers[key] = value
	}

	raw, err := c.session.Do(ctx, &restverbhttp.Request{
		Method:  method,
		URL:     rawURL,
		Body:    options.body,
		Headers: headers,
	})
	if raw == nil {
		c.tracer.end(span, nil, 0, err)

		if errors.Is(err, constants.ErrSessionClosed) {
			return nil, ErrClientClosed
		}

		return nil, fmt.Errorf("preparing %s %s: %w", method, rawURL, err)
	}

	resp := normalize(raw, err)

	if err != nil {
		err = &TransportError{
			Method:   method,
			URL:      rawURL,
			Attempts: raw.Attempts,
			Err:      err,
		}
	}

	if c.metrics != nil {
		c.metrics.RecordRequest(method, resp.StatusCode, resp.Duration)
	}

	c.tracer.end(span, resp, raw.Attempts, err)

	if err == nil {
		c.updateCache(ctx, verb, rawURL, resp, identity, cacheable)
	}

	return resp, err
}

func (c *Client) cacheEnabled() bool {
	return c.cache != nil && !c.Simulated()
}

// cacheIdentity digests the credentials currently sent with every request.
func (c *Client) cacheIdentity() string {
	if !c.cacheEnabled() {
		return ""
	}

	return CacheIdentity(c.session.DefaultHeaders().Get("Authorization"))
}

// lookupCache answers a GET from the cache. Calls with per-call headers are
// never cacheable, and entries fetched under other credentials are misses.
func (c *Client) lookupCache(ctx context.Context, verb Verb, rawURL, identity string, cacheable bool) *Response {
	if verb != VerbGet || !cacheable || !c.cacheEnabled() {
		return nil
	}

	entry, err := c.cache.Get(ctx, CacheKey(rawURL))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("Cache lookup failed", map[string]interface{}{
				"url":   rawURL,
				"error": err.Error(),
			})
		}

		return nil
	}

	if entry.Identity != identity {
		return nil
	}

	if c.metrics != nil {
		c.metrics.IncrementCacheHits()
	}

	return &Response{
		StatusCode: entry.StatusCode,
		Data:       string(entry.Data),
		OK:         IsOK(entry.StatusCode),
		Headers:    entry.Headers.Clone(),
	}
}

// updateCache stores successful GET responses and drops the GET entry of a
// URL after any mutating call on it, whatever credentials it was stored under.
func (c *Client) updateCache(ctx context.Context, verb Verb, rawURL string, resp *Response, identity string, cacheable bool) {
	if !c.cacheEnabled() {
		return
	}

	key := CacheKey(rawURL)

	var err error

	switch {
	case verb == VerbGet && resp.OK && cacheable:
		err = c.cache.Set(ctx, key, &CacheEntry{
			StatusCode: resp.StatusCode,
			Data:       []byte(resp.Data),
			Headers:    resp.Headers.Clone(),
			Identity:   identity,
			ExpiresAt:  time.Now().Add(c.config.CacheTTL),
		})
	case verb == VerbHead || verb == VerbOptions || verb == VerbGet:
		return
	default:
		err = c.cache.Delete(ctx, key)
	}

	if err != nil {
		c.logger.Warn("Cache update failed", map[string]interface{}{
			"url":   rawURL,
			"error": err.Error(),
		})
	}
}
