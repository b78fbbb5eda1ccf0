package commands

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// versionView is the build metadata printed by the version command.
type versionView struct {
	Version   string `json:"version"    yaml:"version"`
	Commit    string `json:"commit"     yaml:"commit"`
	Built     string `json:"built"      yaml:"built"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform"   yaml:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Long:  "Print the restverb version, commit, build date and Go runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := versionView{
				Version:   version,
				Commit:    commit,
				Built:     date,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			return render(cmd.OutOrStdout(), viper.GetString("output"), view, []property{
				{"Version", view.Version},
				{"Commit", view.Commit},
				{"Built", view.Built},
				{"Go", view.GoVersion},
				{"Platform", view.Platform},
			})
		},
	}
}
