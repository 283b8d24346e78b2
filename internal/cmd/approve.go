package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JairoTorregrosa/picopala/internal/approval"
)

func newApproveCmd(app *App) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "approve <team> <task-subject>",
		Short: "Record a reviewer approval for a plan task",
		Long: `Approve writes the marker that lets the task-completed hook accept the
completion of a plan task. The lead runs it after the reviewer returned an
APPROVED verdict. The task subject is the full subject, e.g. "T1: Research".

Markers live under approval.state_dir, one directory per team.`,
		Example: `  picopala approve picopala-alpha "T1: Research"
  picopala approve --revoke picopala-alpha "T1: Research"`,
		Args: exactArgs(2, "team and task subject arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runApprove(cmd, args[0], args[1], revoke)
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove the approval instead of recording it")
	return cmd
}

func (a *App) runApprove(cmd *cobra.Command, team, subject string, revoke bool) error {
	store := approval.NewMarkerStore(a.Fs, a.cfg.Approval.ResolvedStateDir())
	logger := a.commandLogger(cmd).With("team", team, "subject", subject)
	out := cmd.OutOrStdout()

	if revoke {
		if err := store.Revoke(team, subject); err != nil {
			return err
		}
		logger.Info("approval revoked")
		fmt.Fprintf(out, "Revoked approval of '%s' for team %s\n", subject, team)
		return nil
	}

	if err := store.Approve(team, subject); err != nil {
		return err
	}
	logger.Info("approval recorded")
	fmt.Fprintf(out, "Approved '%s' for team %s\n", subject, team)
	fmt.Fprintf(out, "Marker: %s\n", store.MarkerPath(team, subject))
	return nil
}
