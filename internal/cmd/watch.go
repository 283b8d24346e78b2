package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/JairoTorregrosa/picopala/internal/display"
	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/plan"
	"github.com/JairoTorregrosa/picopala/internal/tui/dashboard"
	"github.com/JairoTorregrosa/picopala/internal/watch"
)

func newWatchCmd(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch <plan-file>",
		Short: "Re-analyze a plan every time it changes",
		Long: `Watch shows the plan's status totals and either its validation errors or
its waves, and recomputes them whenever the file is saved.

On a terminal this opens a dashboard (r reloads, q quits). With --plain, or
when output is not a terminal, the analysis is printed again after each change
until interrupted.`,
		Args: exactArgs(1, "plan file argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runWatch(cmd, args[0], plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print plain text instead of opening the dashboard")
	return cmd
}

func (a *App) runWatch(cmd *cobra.Command, path string, plain bool) error {
	logger := a.commandLogger(cmd).WithPlan(path)

	exists, err := afero.Exists(a.Fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", path)
	}
	if !exists {
		return errors.NewUsageError(fmt.Sprintf("File not found: %s", path), errors.ErrFileNotFound)
	}

	w, err := watch.New(path, a.cfg.Watch.Debounce(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Run(ctx) }()

	load := a.planLoader(path)
	out := cmd.OutOrStdout()

	if plain || !a.IsTerminal(out) {
		return printLoop(ctx, out, path, load, w, watchErr)
	}

	logger.Info("dashboard started")
	err = dashboard.Run(ctx, dashboard.New(path, load, w.Events()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(out),
	)
	cancel()
	<-watchErr
	return err
}

// planLoader returns a dashboard.Loader that re-reads path on every call.
func (a *App) planLoader(path string) dashboard.Loader {
	return func() (plan.Analysis, error) {
		tasks, err := plan.Load(a.Fs, path)
		if err != nil {
			return plan.Analysis{}, err
		}
		return plan.Analyze(tasks), nil
	}
}

// printLoop prints the analysis now and after every change until ctx ends.
func printLoop(ctx context.Context, out io.Writer, path string, load dashboard.Loader, w *watch.Watcher, watchErr <-chan error) error {
	r := display.NewRenderer(out)
	render := func() {
		a, err := load()
		if err != nil {
			fmt.Fprint(out, r.Error(err.Error()))
			return
		}
		fmt.Fprint(out, r.Analysis(path, a))
	}

	render()
	for {
		select {
		case <-ctx.Done():
			<-watchErr
			return nil
		case _, ok := <-w.Events():
			if !ok {
				return <-watchErr
			}
			fmt.Fprintln(out, "---")
			render()
		}
	}
}
