package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleTarget() Target {
	return Target{Scheme: "https", Host: "example.com", Port: 443, APIPrefix: "/api"}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestBuildURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		segments []string
		params   Params
		expected string
	}{
		{
			name:     "endpoint only",
			endpoint: "my_endpoint",
			expected: "https://example.com:443/api/my_endpoint",
		},
		{
			name:     "segments and params",
			endpoint: "my_endpoint",
			segments: []string{"arg1"},
			params:   Params{"name": "bob", "age": 50},
			expected: "https://example.com:443/api/my_endpoint/arg1?age=50&name=bob",
		},
		{
			name:     "leading slash is stripped",
			endpoint: "/users",
			expected: "https://example.com:443/api/users",
		},
		{
			name:     "reserved characters in segments are escaped",
			endpoint: "files",
			segments: []string{"a/b?c", "x&y=z"},
			expected: "https://example.com:443/api/files/a%2Fb%3Fc/x%26y%3Dz",
		},
		{
			name:     "spaces become %20",
			endpoint: "search",
			params:   Params{"q": "hello world"},
			expected: "https://example.com:443/api/search?q=hello%20world",
		},
		{
			name:     "unicode segments are UTF-8 percent-encoded",
			endpoint: "places",
			segments: []string{"café"},
			expected: "https://example.com:443/api/places/caf%C3%A9",
		},
		{
			name:     "unicode params are UTF-8 percent-encoded",
			endpoint: "search",
			params:   Params{"city": "Zürich", "名前": "ボブ"},
			expected: "https://example.com:443/api/search?city=Z%C3%BCrich&%E5%90%8D%E5%89%8D=%E3%83%9C%E3%83%96",
		},
		{
			name:     "nil params are omitted",
			endpoint: "users",
			params:   Params{"page": 2, "filter": nil},
			expected: "https://example.com:443/api/users?page=2",
		},
		{
			name:     "empty params add no query",
			endpoint: "users",
			params:   Params{},
			expected: "https://example.com:443/api/users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildURL(exampleTarget(), tt.endpoint, tt.segments, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildURL_EmptyEndpoint(t *testing.T) {
	t.Parallel()

	_, err := BuildURL(exampleTarget(), "/", nil, nil)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, ErrEndpointRequired)
}

func TestBuildURL_NoPrefix(t *testing.T) {
	t.Parallel()

	target := Target{Scheme: "http", Host: "localhost", Port: 8080}

	got, err := BuildURL(target, "health", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/health", got)
}

func TestEncodeQuery_Deterministic(t *testing.T) {
	t.Parallel()

	first := Params{"zeta": 1, "alpha": "a", "mid": true, "beta": 2.5}
	second := Params{"beta": 2.5, "mid": true, "alpha": "a", "zeta": 1}

	expected := "alpha=a&beta=2.5&mid=true&zeta=1"

	for range 20 {
		assert.Equal(t, expected, EncodeQuery(first))
		assert.Equal(t, expected, EncodeQuery(second))
	}
}

func TestEncodeQuery_Values(t *testing.T) {
	t.Parallel()

	name := "bob"

	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{"reserved characters", Params{"a&b": "x=y"}, "a%26b=x%3Dy"},
		{"string slice", Params{"tags": []string{"a", "b"}}, "tags=a%2Cb"},
		{"pointer", Params{"name": &name}, "name=bob"},
		{"int64", Params{"id": int64(9007199254740993)}, "id=9007199254740993"},
		{"nil map", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, EncodeQuery(tt.params))
		})
	}
}

func TestParamsFromStruct(t *testing.T) {
	t.Parallel()

	type listOptions struct {
		Name string   `url:"name"`
		Tags []string `url:"tag"`
		Page int      `url:"page,omitempty"`
	}

	params, err := ParamsFromStruct(listOptions{Name: "bob", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, Params{"name": "bob", "tag": "a,b"}, params)
	assert.Equal(t, "name=bob&tag=a%2Cb", EncodeQuery(params))
}

func TestParamsFromStruct_NotAStruct(t *testing.T) {
	t.Parallel()

	_, err := ParamsFromStruct(42)
	require.Error(t, err)
}
