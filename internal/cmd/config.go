package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JairoTorregrosa/picopala/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View picopala configuration",
		Long: `View picopala configuration.

Without arguments, displays the effective configuration: defaults, overridden
by the config file, overridden by PICOPALA_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: app.runConfigShow,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE:  app.runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			Args:  cobra.NoArgs,
			RunE:  app.runConfigPath,
		},
	)
	return cmd
}

func (a *App) runConfigShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if used := a.viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	return writeStructured(out, formatYAML, a.cfg)
}

func (a *App) runConfigPath(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if used := a.viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./%s (current directory)\n", config.LocalConfigFile)
	fmt.Fprintln(out, "\nEnvironment variables: PICOPALA_* (e.g., PICOPALA_APPROVAL_STATE_DIR)")

	return nil
}
