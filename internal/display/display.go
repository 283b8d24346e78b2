// Package display renders plan results as human-readable text.
//
// Output is styled with lipgloss through a renderer bound to the destination
// writer, so redirected output and test buffers receive plain text.
// Renderers return strings; callers decide where the text goes.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/plan"
	"github.com/JairoTorregrosa/picopala/internal/tui/styles"
)

// Renderer formats plan results with one style set.
type Renderer struct {
	styles styles.Set
}

// NewRenderer creates a Renderer whose color detection follows w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{styles: styles.New(lipgloss.NewRenderer(w))}
}

// WithStyles creates a Renderer over an existing style set.
func WithStyles(s styles.Set) *Renderer {
	return &Renderer{styles: s}
}

// Valid renders the success summary of a validated plan.
func (r *Renderer) Valid(tasks []plan.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d tasks, all dependencies resolved.\n", r.styles.Success.Render("VALID:"), len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&b, "  %s: %s (depends_on: %s)\n", r.styles.TaskID.Render(t.ID), t.Name, errors.FormatIDs(t.DependsOn))
	}
	return b.String()
}

// Invalid renders the validation failure report.
func (r *Renderer) Invalid(issues []plan.Issue) string {
	header := r.styles.Failure.Render("VALIDATION FAILED:") + fmt.Sprintf(" %d error(s):", len(issues))
	return header + "\n" + r.issueLines(issues)
}

// WavesBlocked renders the report shown when waves are requested for a plan
// that does not validate.
func (r *Renderer) WavesBlocked(issues []plan.Issue) string {
	return r.styles.Failure.Render("Plan has validation errors. Fix them first:") + "\n" + r.issueLines(issues)
}

func (r *Renderer) issueLines(issues []plan.Issue) string {
	var b strings.Builder
	for _, issue := range issues {
		fmt.Fprintf(&b, "  %s %s\n", r.styles.ErrorLabel.Render("ERROR:"), issue.Message)
	}
	return b.String()
}

// Error renders a single top-level error line.
func (r *Renderer) Error(message string) string {
	return r.styles.ErrorLabel.Render("ERROR:") + " " + message + "\n"
}

// SummaryLine renders the one-line status totals.
func (r *Renderer) SummaryLine(s plan.Summary) string {
	return fmt.Sprintf("Total: %d | Completed: %d | In Progress: %d | Pending: %d | Failed: %d",
		s.Total, s.Completed, s.InProgress, s.Pending, s.Failed)
}

// Status renders the status report of the plan at path.
func (r *Renderer) Status(path string, s plan.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", r.styles.Title.Render("Plan:"), path)
	b.WriteString(r.SummaryLine(s))
	b.WriteString("\n\n")
	for _, status := range s.Statuses() {
		label := r.styles.Status(status).Render("[" + status + "]")
		fmt.Fprintf(&b, "  %s: %s\n", label, strings.Join(s.ByStatus[status], ", "))
	}
	return b.String()
}

// Waves renders computed waves, one block per wave.
func (r *Renderer) Waves(waves []plan.WaveReport) string {
	if len(waves) == 0 {
		return r.styles.Muted.Render("All tasks completed.") + "\n"
	}

	var b strings.Builder
	for i, w := range waves {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", r.styles.WaveTitle.Render(fmt.Sprintf("Wave %d", w.Wave)))
		for _, t := range w.Tasks {
			fmt.Fprintf(&b, "  %s: %s", r.styles.TaskID.Render(t.ID), t.Name)
			if len(t.DependsOn) > 0 {
				b.WriteString(r.styles.Muted.Render(" (after " + strings.Join(t.DependsOn, ", ") + ")"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Analysis renders a full analysis: the status summary followed by either
// the validation errors, the scheduling failure, or the waves.
func (r *Renderer) Analysis(path string, a plan.Analysis) string {
	var b strings.Builder
	b.WriteString(r.Status(path, a.Summary))
	b.WriteString("\n")
	switch {
	case !a.Valid():
		b.WriteString(r.Invalid(a.Issues))
	case a.WaveErr != nil:
		b.WriteString(r.Error(a.WaveErr.Error()))
	default:
		b.WriteString(r.Waves(a.Waves))
	}
	return b.String()
}
