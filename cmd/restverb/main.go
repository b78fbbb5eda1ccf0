package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/restverb/cmd/restverb/commands"
	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "restverb",
	Short: "Call REST endpoints by HTTP verb",
	Long: `A command-line client for REST APIs.

Every HTTP verb is a subcommand: the first argument is the endpoint, the rest
are path segments. Query parameters are given with -p key=value.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.restverb/config.yml)")
	flags.String("host", "", "server hostname or IP address")
	flags.Int("port", constants.DefaultPort, "server port")
	flags.String("scheme", constants.DefaultScheme, "URL scheme (http, https)")
	flags.String("prefix", constants.DefaultAPIPrefix, "API path prefix (\"/\" for none)")
	flags.StringP("token", "t", "", "bearer token")
	flags.Bool("ask-token", false, "prompt for the bearer token")
	flags.CountP("verbose", "v", "verbosity (-v warn, -vv info, -vvv debug, -vvvv wire)")
	flags.Bool("simulate", false, "answer every call with 200 without network access")
	flags.Int("max-retries", constants.DefaultRetryMax, "retries on transport failure (-1 disables)")
	flags.Duration("timeout", constants.DefaultReadTimeout, "wait for response headers")
	flags.Float64("rate-limit", 0, "maximum requests per second (0 for unlimited)")
	flags.String("cache-url", "", "NATS server URL for a shared GET response cache")
	flags.Duration("cache-ttl", constants.DefaultCacheTTL, "lifetime of cached responses")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.Bool("skip-ssl-validation", false, "skip SSL certificate validation (requires RESTVERB_DEV_MODE)")

	// Bind flags to viper
	for _, name := range []string{
		"config", "host", "port", "scheme", "prefix", "token", "ask-token", "verbose", "simulate",
		"max-retries", "timeout", "rate-limit", "cache-url", "cache-ttl", "output", "skip-ssl-validation",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVerbCommands()...)
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.restverb/config.yml
		viper.AddConfigPath(filepath.Join(home, ".restverb"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match, e.g. RESTVERB_MAX_RETRIES
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetInt("verbose") > 0 {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
