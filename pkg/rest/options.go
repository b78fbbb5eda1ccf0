package rest

// callOptions collects the per-call arguments.
type callOptions struct {
	segments []string
	params   Params
	body     interface{}
	headers  map[string]string
}

// CallOption configures a single call.
type CallOption func(*callOptions)

// WithSegments appends path segments after the endpoint, in order.
func WithSegments(segments ...string) CallOption {
	return func(o *callOptions) {
		o.segments = append(o.segments, segments...)
	}
}

// WithParams merges params into the query string. Later values win.
func WithParams(params Params) CallOption {
	return func(o *callOptions) {
		if o.params == nil {
			o.params = make(Params, len(params))
		}

		for key, value := range params {
			o.params[key] = value
		}
	}
}

// WithParam sets one query parameter.
func WithParam(key string, value interface{}) CallOption {
	return WithParams(Params{key: value})
}

// WithBody sets the request body. Strings, []byte and json.RawMessage are
// sent as-is; anything else is JSON encoded.
func WithBody(body interface{}) CallOption {
	return func(o *callOptions) {
		o.body = body
	}
}

// WithHeader adds a header to this call only. It overrides the defaults.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}

		o.headers[key] = value
	}
}

func applyCallOptions(opts []CallOption) *callOptions {
	options := &callOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}
