package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tresorerie",
		Short:   "Treasury forecasting for construction businesses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "tresorerie.yaml", "configuration file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newPrevisionCommand())
	rootCmd.AddCommand(newMouvementCommand())
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newBalanceCommand())
	rootCmd.AddCommand(newProjectionCommand())
	rootCmd.AddCommand(newScenarioCommand())
	rootCmd.AddCommand(newTVACommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}
