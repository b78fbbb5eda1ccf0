package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/fivetwenty-io/restverb/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper isolates the global viper state of one test.
func resetViper(t *testing.T, values map[string]interface{}) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	for key, value := range values {
		viper.Set(key, value)
	}
}

func serverValues(t *testing.T, server *httptest.Server) map[string]interface{} {
	t.Helper()

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	return map[string]interface{}{
		"host":    parsed.Hostname(),
		"port":    port,
		"scheme":  "http",
		"token":   "cli-token",
		"verbose": 0,
		"output":  constants.FormatJSON,
	}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func findSubcommand(commands []*cobra.Command, name string) *cobra.Command {
	for _, c := range commands {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func TestNewVerbCommands(t *testing.T) {
	commands := NewVerbCommands()
	require.Len(t, commands, len(rest.Verbs()))

	for _, verb := range rest.Verbs() {
		cmd := findSubcommand(commands, string(verb))
		require.NotNil(t, cmd, verb)
		assert.NotNil(t, cmd.RunE)
		assert.NotNil(t, cmd.Flags().Lookup("param"))
		assert.NotNil(t, cmd.Flags().Lookup("header"))
		assert.Equal(t, verb.HasBody(), cmd.Flags().Lookup("data") != nil, verb)
	}

	assert.Equal(t, "get ENDPOINT [SEGMENT...]", findSubcommand(commands, "get").Use)
	assert.Equal(t, "Send a DELETE request", findSubcommand(commands, "delete").Short)
}

func TestVerbCommand_Simulated(t *testing.T) {
	resetViper(t, map[string]interface{}{
		"host":     "example.com",
		"simulate": true,
		"output":   constants.FormatJSON,
	})

	out, err := execute(t, newVerbCommand(rest.VerbGet), "users", "42", "-p", "fields=name")
	require.NoError(t, err)

	var view responseView

	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 200, view.StatusCode)
	assert.True(t, view.OK)
	assert.Empty(t, view.Data)
}

func TestVerbCommand_AgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/api/users/42", request.URL.Path)
		assert.Equal(t, "notify=true", request.URL.RawQuery)
		assert.Equal(t, "Bearer cli-token", request.Header.Get("Authorization"))
		assert.Equal(t, "abc", request.Header.Get("X-Request-Id"))

		body, _ := io.ReadAll(request.Body)
		assert.JSONEq(t, `{"name":"bob"}`, string(body))

		writer.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(writer, `{"id":42}`)
	}))
	defer server.Close()

	values := serverValues(t, server)
	values["output"] = constants.FormatYAML
	resetViper(t, values)

	out, err := execute(t, newVerbCommand(rest.VerbPost), "users", "42",
		"-p", "notify=true", "-H", "X-Request-Id=abc", "-d", `{"name":"bob"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "status_code: 201")
	assert.Contains(t, out, "ok: true")
}

func TestVerbCommand_ErrorStatusIsRendered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(writer, "missing")
	}))
	defer server.Close()

	resetViper(t, serverValues(t, server))

	out, err := execute(t, newVerbCommand(rest.VerbGet), "users")
	require.NoError(t, err)

	var view responseView

	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 404, view.StatusCode)
	assert.False(t, view.OK)
	assert.Equal(t, "missing", view.Data)
}

func TestVerbCommand_MissingHost(t *testing.T) {
	resetViper(t, map[string]interface{}{"simulate": true})

	_, err := execute(t, newVerbCommand(rest.VerbGet), "users")
	require.Error(t, err)
	assert.True(t, rest.IsConfigurationError(err))
}

func TestVerbCommand_InvalidParam(t *testing.T) {
	resetViper(t, map[string]interface{}{"host": "example.com", "simulate": true})

	_, err := execute(t, newVerbCommand(rest.VerbGet), "users", "-p", "novalue")
	require.ErrorIs(t, err, constants.ErrInvalidParameter)
}

func TestQueryCommand(t *testing.T) {
	methods := make(chan string, 2)

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		methods <- request.Method
	}))
	defer server.Close()

	resetViper(t, serverValues(t, server))

	_, err := execute(t, NewQueryCommand(), "", "users")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, <-methods)

	_, err = execute(t, NewQueryCommand(), "PATCH", "users", "-d", `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, <-methods)

	_, err = execute(t, NewQueryCommand(), "fetch", "users")
	require.Error(t, err)
	assert.True(t, rest.IsUnknownMember(err))
}

func TestParseKeyValues(t *testing.T) {
	params, err := parseKeyValues([]string{"a=1", "b=x=y", " c =", "a=2"})
	require.NoError(t, err)
	assert.Equal(t, rest.Params{"a": "2", "b": "x=y", "c": ""}, params)

	_, err = parseKeyValues([]string{"=value"})
	require.ErrorIs(t, err, constants.ErrInvalidParameter)
}

func TestReadBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), constants.ConfigFilePerm))

	body, err := readBody("@" + path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, body)

	body, err = readBody("inline")
	require.NoError(t, err)
	assert.Equal(t, "inline", body)

	_, err = readBody("@" + filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRenderResponse(t *testing.T) {
	var buf bytes.Buffer

	err := renderResponse(&buf, &rest.Response{StatusCode: 200, OK: true, Data: "hello"}, constants.FormatTable)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "200")
	assert.Contains(t, buf.String(), "hello")

	buf.Reset()

	err = renderResponse(&buf, &rest.Response{}, constants.FormatTable)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), constants.NotAvailable)

	err = renderResponse(&buf, &rest.Response{}, "xml")
	require.ErrorIs(t, err, constants.ErrInvalidOutputType)
}

func TestConfigShow(t *testing.T) {
	resetViper(t, map[string]interface{}{
		"host":   "example.com",
		"token":  "super-secret",
		"port":   8443,
		"output": constants.FormatJSON,
	})

	cmd := NewConfigCommand()
	require.NotNil(t, findSubcommand(cmd.Commands(), "show"))

	out, err := execute(t, cmd, "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret")

	var settings Settings

	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	assert.Equal(t, "example.com", settings.Host)
	assert.Equal(t, 8443, settings.Port)
	assert.Equal(t, constants.MaskedSecret, settings.Token)
}

func TestVersionCommand(t *testing.T) {
	resetViper(t, map[string]interface{}{"output": constants.FormatJSON})

	out, err := execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
	require.NoError(t, err)

	var info map[string]string

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc123", info["commit"])
	assert.Equal(t, runtime.Version(), info["go_version"])

	resetViper(t, map[string]interface{}{"output": constants.FormatTable})

	out, err = execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "2026-01-01")
}

func TestConfigShow_InvalidOutput(t *testing.T) {
	resetViper(t, map[string]interface{}{"host": "example.com", "output": "xml"})

	_, err := execute(t, NewConfigCommand(), "show")
	require.ErrorIs(t, err, constants.ErrInvalidOutputType)
}
