package rest

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

// Params are the query parameters of a call. Nil values are omitted.
type Params map[string]interface{}

// Target is the base of every URL built for a client.
type Target struct {
	Scheme    string
	Host      string
	Port      int
	APIPrefix string
}

// Base returns "{scheme}://{host}:{port}{prefix}".
func (t Target) Base() string {
	return fmt.Sprintf("%s://%s:%d%s", t.Scheme, t.Host, t.Port, t.APIPrefix)
}

// BuildURL composes the fully qualified URL of a call. The endpoint and each
// segment are escaped individually, so reserved characters never act as
// separators. Query keys are sorted, which makes the result deterministic.
func BuildURL(target Target, endpoint string, segments []string, params Params) (string, error) {
	endpoint = strings.TrimPrefix(endpoint, "/")
	if endpoint == "" {
		return "", configError("endpoint", ErrEndpointRequired)
	}

	return buildURL(target, append([]string{endpoint}, segments...), params), nil
}

func buildURL(target Target, elements []string, params Params) string {
	var builder strings.Builder

	builder.WriteString(target.Base())

	for _, element := range elements {
		builder.WriteByte('/')
		builder.WriteString(Escape(element))
	}

	if encoded := EncodeQuery(params); encoded != "" {
		builder.WriteByte('?')
		builder.WriteString(encoded)
	}

	return builder.String()
}

// EncodeQuery renders params as "k1=v1&k2=v2" with keys in lexicographic order.
func EncodeQuery(params Params) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))

	for key, value := range params {
		if isNil(value) {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, Escape(key)+"="+Escape(stringify(params[key])))
	}

	return strings.Join(pairs, "&")
}

// Escape percent-encodes everything outside the unreserved set. Spaces become %20.
func Escape(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// ParamsFromStruct converts a struct tagged for go-querystring into Params.
// Multi-valued fields are joined with commas.
func ParamsFromStruct(value interface{}) (Params, error) {
	values, err := query.Values(value)
	if err != nil {
		return nil, fmt.Errorf("encoding query struct: %w", err)
	}

	params := make(Params, len(values))
	for key, list := range values {
		params[key] = strings.Join(list, ",")
	}

	return params, nil
}

func stringify(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case []string:
		return strings.Join(typed, ",")
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		return stringify(rv.Elem().Interface())
	}

	return fmt.Sprint(value)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
