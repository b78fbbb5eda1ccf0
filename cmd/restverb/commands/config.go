package commands

import (
	"strconv"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Settings is the effective CLI configuration after flags, environment and
// config file are merged.
type Settings struct {
	Host       string `json:"host"        yaml:"host"`
	Port       int    `json:"port"        yaml:"port"`
	Scheme     string `json:"scheme"      yaml:"scheme"`
	Prefix     string `json:"prefix"      yaml:"prefix"`
	Token      string `json:"token"       yaml:"token"`
	Verbosity  int    `json:"verbosity"   yaml:"verbosity"`
	Simulate   bool   `json:"simulate"    yaml:"simulate"`
	MaxRetries int    `json:"max_retries" yaml:"max_retries"`
	Timeout    string `json:"timeout"     yaml:"timeout"`
	CacheURL   string `json:"cache_url"   yaml:"cache_url"`
	Output     string `json:"output"      yaml:"output"`
	ConfigFile string `json:"config_file" yaml:"config_file"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
		Long:  "Inspect the restverb configuration merged from flags, RESTVERB_* variables and the config file",
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration. The token is masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := currentSettings()

			return render(cmd.OutOrStdout(), settings.Output, settings, []property{
				{"Host", orNotAvailable(settings.Host)},
				{"Port", strconv.Itoa(settings.Port)},
				{"Scheme", settings.Scheme},
				{"Prefix", settings.Prefix},
				{"Token", orNotAvailable(settings.Token)},
				{"Verbosity", strconv.Itoa(settings.Verbosity)},
				{"Simulate", strconv.FormatBool(settings.Simulate)},
				{"Max Retries", strconv.Itoa(settings.MaxRetries)},
				{"Timeout", settings.Timeout},
				{"Cache URL", orNotAvailable(settings.CacheURL)},
				{"Config File", orNotAvailable(settings.ConfigFile)},
			})
		},
	}
}

func currentSettings() Settings {
	token := viper.GetString("token")
	if token != "" {
		token = constants.MaskedSecret
	}

	return Settings{
		Host:       viper.GetString("host"),
		Port:       viper.GetInt("port"),
		Scheme:     viper.GetString("scheme"),
		Prefix:     viper.GetString("prefix"),
		Token:      token,
		Verbosity:  viper.GetInt("verbose"),
		Simulate:   viper.GetBool("simulate"),
		MaxRetries: viper.GetInt("max-retries"),
		Timeout:    viper.GetDuration("timeout").String(),
		CacheURL:   viper.GetString("cache-url"),
		Output:     viper.GetString("output"),
		ConfigFile: viper.ConfigFileUsed(),
	}
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
