package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/mcpserver"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Serve exposes plan_validate, plan_waves and plan_status as MCP tools over
stdin/stdout. Every call re-reads the plan file it is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runServe(cmd)
		},
	}
}

func (a *App) runServe(cmd *cobra.Command) error {
	logger := a.commandLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mcpserver.Version = Version
	s := mcpserver.New(a.Fs, logger)

	logger.Info("mcp server started")
	err := mcpserver.Serve(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
	logger.Info("mcp server stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "mcp server failed")
	}
	return nil
}
