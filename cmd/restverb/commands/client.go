package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/fivetwenty-io/restverb/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// buildConfig translates flags, environment and config file into a rest.Config.
func buildConfig(token string) *rest.Config {
	verbosity := viper.GetInt("verbose")

	return &rest.Config{
		Host:          viper.GetString("host"),
		Port:          viper.GetInt("port"),
		Scheme:        viper.GetString("scheme"),
		APIPrefix:     viper.GetString("prefix"),
		Token:         token,
		Verbosity:     min(verbosity, constants.VerbosityDebug),
		Debug:         verbosity > constants.VerbosityDebug,
		Simulation:    viper.GetBool("simulate"),
		MaxRetries:    viper.GetInt("max-retries"),
		ReadTimeout:   viper.GetDuration("timeout"),
		SkipTLSVerify: viper.GetBool("skip-ssl-validation"),
		RateLimit:     viper.GetFloat64("rate-limit"),
	}
}

// newClient creates a client for one command. The returned cleanup closes
// the client and any cache connection.
func newClient(ctx context.Context) (*rest.Client, func(), error) {
	token := viper.GetString("token")

	if viper.GetBool("ask-token") {
		prompted, err := promptToken()
		if err != nil {
			return nil, func() {}, err
		}

		token = prompted
	}

	config := buildConfig(token)

	var natsCache *rest.NATSCache

	if cacheURL := viper.GetString("cache-url"); cacheURL != "" && !config.Simulation {
		var err error

		natsCache, err = rest.NewNATSCache(ctx, &rest.NATSConfig{
			URL: cacheURL,
			TTL: viper.GetDuration("cache-ttl"),
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to open response cache: %w", err)
		}

		config.Cache = natsCache
		config.CacheTTL = viper.GetDuration("cache-ttl")
	}

	client, err := rest.New(config)
	if err != nil {
		if natsCache != nil {
			natsCache.Close()
		}

		return nil, func() {}, err
	}

	cleanup := func() {
		_ = client.Close()

		if natsCache != nil {
			natsCache.Close()
		}
	}

	return client, cleanup, nil
}

func promptToken() (string, error) {
	fmt.Fprint(os.Stderr, "Token: ")

	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return "", constants.ErrTokenInputEmpty
	}

	return token, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
