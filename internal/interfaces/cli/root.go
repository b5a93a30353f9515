// Package cli implements kitchenctl, the offline companion to the analytics
// server: analyze exports, load them into a database and mint API tokens.
package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Build metadata, set with -ldflags by the release build
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewRootCommand builds the kitchenctl command tree writing to out
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "kitchenctl",
		Short: "Menu engineering analytics from the command line",
		Long: `kitchenctl runs the menu engineering analysis over JSON exports of sales,
menus and recipes, imports those exports into the analytics database and
issues access tokens for the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().String("config", "", "config file (default is ./config.toml)")

	root.AddCommand(
		newAnalyzeCommand(),
		newImportCommand(),
		newTokenCommand(),
		newVersionCommand(),
	)
	return root
}

// bindFlags exposes a command's flags through viper so each one can also be
// set as KITCHENCTL_<FLAG> in the environment.
func bindFlags(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KITCHENCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	return v
}

// configPath returns the --config flag inherited from the root command
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
