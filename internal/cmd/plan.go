package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JairoTorregrosa/picopala/internal/display"
	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/plan"
)

func newValidateCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a plan's fields and dependency graph",
		Long: `Validate checks every task of the plan for the required fields
(depends_on, location, description, acceptance_criteria, validation, status),
a known status value, dependencies that name existing tasks, unique ids, and
an acyclic dependency graph. Every problem is reported, not just the first.

Compatibility: the summary lines read "VALID: ..." and
"VALIDATION FAILED: N error(s):", and task id lists are written [T1, T2].
Scripts matching the earlier "VALID —" wording or quoted ['T1'] lists
need updating.`,
		Args: exactArgs(1, "plan file argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(cmd, format, formatText, formatJSON); err != nil {
				return err
			}
			return app.runValidate(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	return cmd
}

// validationReport is the JSON form of a validate run.
type validationReport struct {
	Valid  bool           `json:"valid"`
	Tasks  []plan.TaskRef `json:"tasks"`
	Issues []plan.Issue   `json:"issues"`
}

func (a *App) runValidate(cmd *cobra.Command, path, format string) error {
	logger := a.commandLogger(cmd).WithPlan(path)

	tasks, err := plan.Load(a.Fs, path)
	if err != nil {
		return err
	}
	issues := plan.Validate(tasks)
	logger.Info("plan validated", "tasks", len(tasks), "issues", len(issues))

	if format == formatJSON {
		report := validationReport{
			Valid:  len(issues) == 0,
			Tasks:  taskRefs(tasks),
			Issues: issues,
		}
		if report.Issues == nil {
			report.Issues = []plan.Issue{}
		}
		if err := writeStructured(cmd.OutOrStdout(), formatJSON, report); err != nil {
			return err
		}
		if !report.Valid {
			return errors.NewExitError(errors.ExitFailure, "validation failed")
		}
		return nil
	}

	if len(issues) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), display.NewRenderer(cmd.ErrOrStderr()).Invalid(issues))
		return errors.NewExitError(errors.ExitFailure, "validation failed")
	}
	fmt.Fprint(cmd.OutOrStdout(), display.NewRenderer(cmd.OutOrStdout()).Valid(tasks))
	return nil
}

func taskRefs(tasks []plan.Task) []plan.TaskRef {
	refs := make([]plan.TaskRef, 0, len(tasks))
	for _, t := range tasks {
		refs = append(refs, plan.TaskRef{ID: t.ID, Name: t.Name, DependsOn: t.DependsOn})
	}
	return refs
}

func newWavesCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "waves <plan-file>",
		Short: "Compute the parallel execution waves of a plan",
		Long: `Waves validates the plan and, if it is clean, groups the remaining tasks
into ordered waves. Every task in a wave has all of its dependencies completed
or scheduled in an earlier wave. Tasks with status completed are not scheduled.

The default format comes from output.waves_format in the config.`,
		Args: exactArgs(1, "plan file argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = app.cfg.Output.WavesFormat
			}
			if err := checkFormat(cmd, format, formatJSON, formatYAML); err != nil {
				return err
			}
			return app.runWaves(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")
	return cmd
}

func (a *App) runWaves(cmd *cobra.Command, path, format string) error {
	logger := a.commandLogger(cmd).WithPlan(path)

	tasks, err := plan.Load(a.Fs, path)
	if err != nil {
		return err
	}

	if issues := plan.Validate(tasks); len(issues) > 0 {
		logger.Info("waves refused for invalid plan", "issues", len(issues))
		fmt.Fprint(cmd.ErrOrStderr(), display.NewRenderer(cmd.ErrOrStderr()).WavesBlocked(issues))
		return errors.NewExitError(errors.ExitFailure, "plan has validation errors")
	}

	waves, err := plan.ComputeWaves(tasks)
	if err != nil {
		logger.Warn("wave computation failed", "error", err.Error())
		return err
	}
	logger.Info("waves computed", "waves", len(waves))

	return writeStructured(cmd.OutOrStdout(), format, plan.BuildWaveReports(tasks, waves))
}

func newStatusCmd(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status <plan-file>",
		Short: "Show task counts and ids per status",
		Long: `Status groups the plan's tasks by their status field. Any status value
forms its own group; tasks without one are listed as unknown. The plan is not
validated.`,
		Args: exactArgs(1, "plan file argument"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(cmd, format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			return app.runStatus(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

// statusReport is the structured form of a status run.
type statusReport struct {
	Plan         string `json:"plan" yaml:"plan"`
	plan.Summary `yaml:",inline"`
}

func (a *App) runStatus(cmd *cobra.Command, path, format string) error {
	tasks, err := plan.Load(a.Fs, path)
	if err != nil {
		return err
	}
	summary := plan.Summarize(tasks)
	a.commandLogger(cmd).WithPlan(path).Debug("plan summarized", "total", summary.Total)

	if format == formatText {
		fmt.Fprint(cmd.OutOrStdout(), display.NewRenderer(cmd.OutOrStdout()).Status(path, summary))
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), format, statusReport{Plan: path, Summary: summary})
}
