package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// Task status colors
	StatusCompleted  = lipgloss.Color("#A78BFA") // Purple
	StatusInProgress = lipgloss.Color("#10B981") // Green
	StatusPending    = lipgloss.Color("#9CA3AF") // Gray
	StatusFailed     = lipgloss.Color("#F87171") // Red
	StatusUnknown    = lipgloss.Color("#FBBF24") // Yellow
)

// Set is the group of styles used to render plan output. Every style is
// built from one renderer so color detection follows the output writer.
type Set struct {
	renderer *lipgloss.Renderer

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Success    lipgloss.Style
	Failure    lipgloss.Style
	ErrorLabel lipgloss.Style
	Muted      lipgloss.Style
	WaveTitle  lipgloss.Style
	TaskID     lipgloss.Style
	Box        lipgloss.Style
	HelpBar    lipgloss.Style
	HelpKey    lipgloss.Style
}

// New builds the style set on r. A nil renderer uses lipgloss's default
// renderer (stdout).
func New(r *lipgloss.Renderer) Set {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Set{
		renderer: r,
		Title: r.NewStyle().
			Bold(true).
			Foreground(PrimaryColor),
		Subtitle: r.NewStyle().
			Foreground(MutedColor).
			Italic(true),
		Success: r.NewStyle().
			Bold(true).
			Foreground(SecondaryColor),
		Failure: r.NewStyle().
			Bold(true).
			Foreground(ErrorColor),
		ErrorLabel: r.NewStyle().
			Foreground(ErrorColor),
		Muted: r.NewStyle().
			Foreground(MutedColor),
		WaveTitle: r.NewStyle().
			Bold(true).
			Foreground(TextColor),
		TaskID: r.NewStyle().
			Foreground(PrimaryColor),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1),
		HelpBar: r.NewStyle().
			Foreground(MutedColor).
			MarginTop(1),
		HelpKey: r.NewStyle().
			Foreground(WarningColor).
			Bold(true),
	}
}

// Status returns the foreground style for a task status bucket.
func (s Set) Status(status string) lipgloss.Style {
	return s.renderer.NewStyle().Foreground(StatusColor(status))
}

// StatusColor returns the color for a given status
func StatusColor(status string) lipgloss.Color {
	switch strings.ToLower(status) {
	case "completed":
		return StatusCompleted
	case "in_progress":
		return StatusInProgress
	case "pending":
		return StatusPending
	case "failed":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// StatusIcon returns an icon for a given status
func StatusIcon(status string) string {
	switch strings.ToLower(status) {
	case "completed":
		return "✓"
	case "in_progress":
		return "●"
	case "pending":
		return "○"
	case "failed":
		return "✗"
	default:
		return "?"
	}
}
