package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JairoTorregrosa/picopala/internal/config"
	"github.com/JairoTorregrosa/picopala/internal/display"
	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// App carries the process dependencies shared by every command.
type App struct {
	Fs  afero.Fs
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// IsTerminal reports whether w is an interactive terminal.
	IsTerminal func(w io.Writer) bool

	viper  *viper.Viper
	cfg    *config.Config
	logger *logging.Logger
}

// NewApp creates an App over the given filesystem and streams.
func NewApp(fs afero.Fs, in io.Reader, out, errOut io.Writer) *App {
	return &App{
		Fs:         fs,
		In:         in,
		Out:        out,
		Err:        errOut,
		IsTerminal: isTerminal,
		logger:     logging.NopLogger(),
	}
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	app := NewApp(afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr)
	return app.Run(context.Background(), os.Args[1:])
}

// Run executes args against a fresh command tree.
func (a *App) Run(ctx context.Context, args []string) int {
	return a.execute(ctx, NewRootCmd(a), args)
}

func (a *App) execute(ctx context.Context, root *cobra.Command, args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("panic", "command", strings.Join(args, " "), "panic", fmt.Sprint(r))
			fmt.Fprint(a.Err, display.NewRenderer(a.Err).Error(fmt.Sprintf("unexpected error: %v", r)))
			code = errors.ExitFailure
		}
		_ = a.logger.Close()
	}()

	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	err := root.ExecuteContext(ctx)
	return a.report(err)
}

// report prints err unless its output was already written and maps it to
// an exit code.
func (a *App) report(err error) int {
	if err == nil {
		return errors.ExitOK
	}
	if errors.IsSilent(err) {
		return errors.ExitCode(err)
	}

	a.logger.Error("command failed", "error", err.Error())

	r := display.NewRenderer(a.Err)
	fmt.Fprint(a.Err, r.Error(err.Error()))
	var usageErr *errors.UsageError
	if errors.As(err, &usageErr) && usageErr.Usage != "" {
		fmt.Fprintf(a.Err, "Usage: %s\n", usageErr.Usage)
	}
	return errors.ExitCode(err)
}

// topLevel lists the user-facing commands in the order they are advertised.
var topLevel = []string{"validate", "waves", "status", "watch", "approve", "hook", "serve", "config"}

// NewRootCmd builds the command tree for app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "picopala",
		Short: "Plan validation and wave scheduling for parallel agent teams",
		Long: `picopala reads a markdown plan of "### T1: Name" task sections, validates
its fields and dependency graph, and computes the waves of tasks that can run
in parallel. It also provides the completion and reviewer hooks used by
picopala teams, a live plan dashboard, and an MCP server.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return errors.NewUsageError(
				fmt.Sprintf("Unknown command '%s'. Use: %s", args[0], strings.Join(topLevel, ", ")),
				errors.ErrUnknownCommand,
			)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/picopala/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: "+strings.Join(logging.ValidLevels(), ", "))

	root.AddCommand(
		newValidateCmd(app),
		newWavesCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
		newApproveCmd(app),
		newHookCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
	)
	return root
}

// setup reads the configuration and opens the logger once per process.
func (a *App) setup(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	v := config.New()
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.ReadInConfig(v, cfgFile); err != nil {
		return errors.Wrap(err, "failed to read config")
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		v.Set("logging.level", f.Value.String())
	}

	cfg, err := config.Load(v)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	a.viper = v
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLoggerWithRotation(cfg.ResolvedLogDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log")
	}
	return logger, nil
}

// commandLogger returns the app logger scoped to cmd.
func (a *App) commandLogger(cmd *cobra.Command) *logging.Logger {
	return a.logger.WithCommand(strings.TrimPrefix(cmd.CommandPath(), "picopala "))
}
