package approval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JairoTorregrosa/picopala/internal/hook"
	"github.com/JairoTorregrosa/picopala/internal/logging"
)

// HookName prefixes the messages of the task-completed hook.
const HookName = "TaskCompleted hook"

// DefaultTeamPrefix selects the teams gated when none is configured.
const DefaultTeamPrefix = "picopala-"

// planTaskPattern matches subjects such as "T1: Research" or "T12 Build".
var planTaskPattern = regexp.MustCompile(`^T\d+[:\s]`)

// IsPlanTask reports whether a task subject follows the plan naming
// convention.
func IsPlanTask(subject string) bool {
	return planTaskPattern.MatchString(subject)
}

// Request is the JSON document received by the task-completed hook.
type Request struct {
	TeamName    string `json:"team_name"`
	TaskID      string `json:"task_id"`
	TaskSubject string `json:"task_subject"`
}

// Gate decides whether a task may be marked complete.
type Gate struct {
	store      Store
	teamPrefix string
	logger     *logging.Logger
}

// NewGate creates a Gate over store. An empty teamPrefix uses
// DefaultTeamPrefix; a nil logger discards.
func NewGate(store Store, teamPrefix string, logger *logging.Logger) *Gate {
	if teamPrefix == "" {
		teamPrefix = DefaultTeamPrefix
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Gate{store: store, teamPrefix: teamPrefix, logger: logger}
}

// Evaluate applies the gate rules in order: non-prefixed teams, requests
// without a task id, and subjects that are not plan tasks pass; an approved
// task passes; anything else blocks, including a failing store.
func (g *Gate) Evaluate(req Request) hook.Decision {
	subject := req.TaskSubject
	if subject == "" {
		subject = req.TaskID
	}

	if !strings.HasPrefix(req.TeamName, g.teamPrefix) {
		return hook.Allow()
	}
	// A missing task id is the implicit event at the end of a teammate turn.
	if req.TaskID == "" {
		return hook.Allow()
	}
	if !IsPlanTask(subject) {
		g.logger.Debug("ungated subtask completed", "team", req.TeamName, "subject", subject)
		return hook.Allow()
	}

	approved, err := g.store.IsApproved(req.TeamName, subject)
	if err != nil {
		g.logger.Error("approval lookup failed", "team", req.TeamName, "subject", subject, "error", err.Error())
		return hook.Block("%s: unexpected error: %v", HookName, err)
	}
	if approved {
		g.logger.Info("approved task completed", "team", req.TeamName, "subject", subject)
		return hook.Allow()
	}

	g.logger.Info("blocked unapproved task", "team", req.TeamName, "subject", subject, "task_id", req.TaskID)
	return hook.Block("%s", g.blockReason(req.TeamName, req.TaskID, subject))
}

func (g *Gate) blockReason(team, taskID, subject string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan task '%s' (%s) cannot be completed: no review approval found.\n", subject, taskID)
	b.WriteString("The lead must record the approval after receiving an APPROVED verdict from the reviewer.\n")
	fmt.Fprintf(&b, "Run: picopala approve %s %s", shellQuote(team), shellQuote(subject))
	if ms, ok := g.store.(*MarkerStore); ok {
		fmt.Fprintf(&b, "\nMarker: %s", ms.MarkerPath(team, subject))
	}
	return b.String()
}

// shellQuote wraps s in single quotes when it contains anything beyond
// plain word characters.
func shellQuote(s string) string {
	if s != "" && SanitizeID(s) == s {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
