//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Host       string
	Token      string
	Endpoint   string
	NATSURL    string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Host:       os.Getenv("RESTVERB_TEST_HOST"),
		Token:      os.Getenv("RESTVERB_TEST_TOKEN"),
		Endpoint:   os.Getenv("RESTVERB_TEST_ENDPOINT"),
		NATSURL:    os.Getenv("RESTVERB_NATS_URL"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("RESTVERB_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the restverb binary
func getBinaryPath() string {
	if path := os.Getenv("RESTVERB_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../restverb",
		"./restverb",
		"../restverb",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "restverb" // Fallback to PATH
}

// SkipIfMissingBinary skips test if the restverb binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("restverb binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// SkipIfMissingHost skips test if no live target is configured
func (config *TestConfig) SkipIfMissingHost(t *testing.T) {
	t.Helper()

	if config.Host == "" || config.Endpoint == "" {
		t.Skip("RESTVERB_TEST_HOST or RESTVERB_TEST_ENDPOINT not set, skipping integration test")
	}

	config.SkipIfMissingBinary(t)
}

// SkipIfMissingNATS skips test if no NATS server is configured
func (config *TestConfig) SkipIfMissingNATS(t *testing.T) {
	t.Helper()

	if config.NATSURL == "" {
		t.Skip("RESTVERB_NATS_URL not set, skipping integration test")
	}
}

// CommandRunner provides utilities for running restverb commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a restverb command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(), "RESTVERB_TOKEN="+runner.config.Token)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// ResponseOutput is the JSON rendering of a response.
type ResponseOutput struct {
	StatusCode int    `json:"status_code"`
	OK         bool   `json:"ok"`
	Duration   string `json:"duration"`
	Data       string `json:"data"`
}

// DecodeResponse parses `--output json` output.
func DecodeResponse(t *testing.T, output string) ResponseOutput {
	t.Helper()

	var resp ResponseOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &resp); err != nil {
		t.Fatalf("Output is not a JSON response: %v\n%s", err, output)
	}

	return resp
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
