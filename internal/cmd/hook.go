package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JairoTorregrosa/picopala/internal/approval"
	"github.com/JairoTorregrosa/picopala/internal/cmdfilter"
	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/hook"
)

// hookNameAnnotation carries the message prefix of a hook subcommand.
const hookNameAnnotation = "hook-name"

func newHookCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Hook entry points invoked by the agent host",
		Long: `Hook subcommands read one JSON document on stdin and answer through the
exit code: 0 allows the action, 2 blocks it and the reason is written to
stderr. Hooks fail closed: unreadable input or a broken configuration blocks.`,
		// Configuration errors must block instead of failing with exit 1,
		// which the host treats as non-blocking.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.setup(cmd); err != nil {
				name := cmd.Annotations[hookNameAnnotation]
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: unexpected error: %v\n", name, err)
				return errors.NewExitError(errors.ExitBlocked, err.Error())
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "task-completed",
			Short: "Block completion of plan tasks that have no review approval",
			Long: `Reads {"team_name", "task_id", "task_subject"} and blocks completion of plan
tasks ("T1: ...") of teams with the approval.team_prefix prefix unless an
approval marker exists. See 'picopala approve'.`,
			Args:        cobra.NoArgs,
			Annotations: map[string]string{hookNameAnnotation: approval.HookName},
			RunE: func(cmd *cobra.Command, _ []string) error {
				store := approval.NewMarkerStore(app.Fs, app.cfg.Approval.ResolvedStateDir())
				gate := approval.NewGate(store, app.cfg.Approval.TeamPrefix, app.commandLogger(cmd))
				return hookResult(hook.Run(cmd.InOrStdin(), cmd.ErrOrStderr(), approval.HookName, gate.Evaluate))
			},
		},
		&cobra.Command{
			Use:   "reviewer-bash",
			Short: "Allow reviewers to run read-only verification commands only",
			Long: `Reads {"tool_input": {"command"}} and blocks any command that does not start
with one of reviewer.allowed_prefixes or that contains a shell metacharacter.`,
			Args:        cobra.NoArgs,
			Annotations: map[string]string{hookNameAnnotation: cmdfilter.HookName},
			RunE: func(cmd *cobra.Command, _ []string) error {
				filter := cmdfilter.New(app.cfg.Reviewer.AllowedPrefixes)
				return hookResult(hook.Run(cmd.InOrStdin(), cmd.ErrOrStderr(), cmdfilter.HookName, filter.Evaluate))
			},
		},
	)
	return cmd
}

// hookResult converts a hook exit code into a silent error.
func hookResult(code int) error {
	if code == errors.ExitOK {
		return nil
	}
	return errors.NewExitError(code, "hook blocked")
}
