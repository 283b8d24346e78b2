// Package dashboard is the live terminal view of a plan used by the watch
// command. It shows the status totals and either the validation errors or
// the computed waves, and reloads whenever the plan changes.
package dashboard

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JairoTorregrosa/picopala/internal/display"
	"github.com/JairoTorregrosa/picopala/internal/errors"
	"github.com/JairoTorregrosa/picopala/internal/plan"
	"github.com/JairoTorregrosa/picopala/internal/tui/keymap"
	"github.com/JairoTorregrosa/picopala/internal/tui/styles"
)

// chromeHeight is the number of rows used by the header and help bar.
const chromeHeight = 5

// Loader produces a fresh analysis of the plan.
type Loader func() (plan.Analysis, error)

// loadedMsg carries the result of one Loader call.
type loadedMsg struct {
	analysis plan.Analysis
	err      error
}

// changedMsg signals that the watched plan changed on disk.
type changedMsg struct{}

// Model is the bubbletea model of the dashboard.
type Model struct {
	path    string
	load    Loader
	changes <-chan struct{}

	keys     *keymap.Keymap
	styles   styles.Set
	renderer *display.Renderer
	viewport viewport.Model

	analysis plan.Analysis
	loadErr  error
	loaded   bool
	analyzed bool
	reloads  int

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a dashboard for path. changes may be nil when no watcher is
// running; the plan can still be reloaded with 'r'.
func New(path string, load Loader, changes <-chan struct{}) Model {
	s := styles.New(nil)
	return Model{
		path:     path,
		load:     load,
		changes:  changes,
		keys:     keymap.Default(),
		styles:   s,
		renderer: display.WithStyles(s),
		viewport: viewport.New(0, 0),
	}
}

// Init loads the plan and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), waitForChange(m.changes))
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.ready = true
		m.refreshContent()
		return m, nil

	case loadedMsg:
		m.loaded = true
		m.reloads++
		m.loadErr = msg.err
		if msg.err == nil {
			m.analysis = msg.analysis
			m.analyzed = true
		}
		m.refreshContent()
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.reload(), waitForChange(m.changes))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.keys.Lookup(msg)
	if !ok {
		return m, nil
	}

	switch cmd {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit
	case keymap.CmdReload:
		return m, m.reload()
	case keymap.CmdScrollUp:
		m.viewport.SetYOffset(m.viewport.YOffset - 1)
	case keymap.CmdScrollDown:
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	case keymap.CmdScrollPageUp:
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
	case keymap.CmdScrollPageDown:
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
	case keymap.CmdScrollToTop:
		m.viewport.GotoTop()
	case keymap.CmdScrollToBottom:
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m *Model) refreshContent() {
	m.viewport.SetContent(m.content())
}

// content is the scrollable body: load error, validation errors, scheduling
// failure, or waves.
func (m Model) content() string {
	if !m.loaded {
		return m.styles.Muted.Render("Loading plan...")
	}

	var b strings.Builder
	if m.loadErr != nil {
		b.WriteString(m.renderer.Error(m.loadErr.Error()))
		if !m.analyzed {
			return b.String()
		}
		b.WriteString(m.styles.Muted.Render("Showing the last successful load.") + "\n\n")
	}
	switch {
	case !m.analysis.Valid():
		b.WriteString(m.renderer.Invalid(m.analysis.Issues))
	case m.analysis.WaveErr != nil:
		b.WriteString(m.renderer.Error(m.analysis.WaveErr.Error()))
	default:
		b.WriteString(m.renderer.Waves(m.analysis.Waves))
	}
	return b.String()
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("picopala") + " " + m.styles.Subtitle.Render(m.path))
	b.WriteString("\n")
	b.WriteString(m.summaryView())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) summaryView() string {
	if !m.analyzed {
		return m.styles.Muted.Render("-")
	}
	s := m.analysis.Summary
	parts := []string{m.renderer.SummaryLine(s)}
	for _, status := range s.Statuses() {
		icon := styles.StatusIcon(status)
		parts = append(parts, m.styles.Status(status).Render(icon+" "+status))
	}
	return strings.Join(parts, "  ")
}

func (m Model) helpView() string {
	entries := m.keys.Help(keymap.CmdReload, keymap.CmdScrollUp, keymap.CmdScrollDown, keymap.CmdQuit)
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, m.styles.HelpKey.Render(e.Keys)+" "+e.Description)
	}
	return m.styles.HelpBar.Render(strings.Join(parts, "  "))
}

// Reloads returns how many load results the model has received.
func (m Model) Reloads() int {
	return m.reloads
}

func (m Model) reload() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		analysis, err := load()
		return loadedMsg{analysis: analysis, err: err}
	}
}

// waitForChange blocks until the next change notification. A nil or closed
// channel ends the subscription.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Run starts the dashboard in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
