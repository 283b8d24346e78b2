// Package cmdfilter restricts the shell commands a reviewer may run to a
// fixed set of read-only verification commands.
package cmdfilter

import (
	"slices"
	"strings"

	"github.com/JairoTorregrosa/picopala/internal/hook"
)

// HookName prefixes the messages of the reviewer-bash hook.
const HookName = "Reviewer bash filter"

// metacharacters could chain or redirect commands.
const metacharacters = ";|&`$><"

var defaultPrefixes = []string{
	// Test and quality checks
	"bun run test",
	"bun run typecheck",
	"bun lint",
	"bun run build",
	"bun run quality",
	// Git, read-only
	"git log",
	"git diff",
	"git show",
	"git rev-parse",
	"git status",
	"git branch",
	// Tooling, read-only
	"bunx convex codegen",
	"bun run test:run",
	"bun run test:coverage",
	"bun run quality:fast",
}

// DefaultPrefixes returns the built-in allowlist.
func DefaultPrefixes() []string {
	return slices.Clone(defaultPrefixes)
}

// Filter matches commands against an allowlist of exact prefixes.
type Filter struct {
	prefixes []string
}

// New creates a Filter. An empty list falls back to DefaultPrefixes.
func New(prefixes []string) *Filter {
	if len(prefixes) == 0 {
		prefixes = defaultPrefixes
	}
	return &Filter{prefixes: slices.Clone(prefixes)}
}

// Prefixes returns the allowlist.
func (f *Filter) Prefixes() []string {
	return slices.Clone(f.prefixes)
}

// Allowed reports whether command may run. The command is trimmed, must be
// free of shell metacharacters, and must start with an allowed prefix.
// Matching is by plain string prefix, so "git logs" passes under "git log".
func (f *Filter) Allowed(command string) bool {
	cmd := strings.TrimSpace(command)

	if strings.ContainsAny(cmd, metacharacters) {
		return false
	}

	for _, prefix := range f.prefixes {
		if strings.HasPrefix(cmd, prefix) {
			return true
		}
	}
	return false
}

// Input is the JSON document received by the reviewer-bash hook.
type Input struct {
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput carries the shell command the reviewer wants to run.
type ToolInput struct {
	Command string `json:"command"`
}

// Evaluate decides whether the command in the hook input may run.
func (f *Filter) Evaluate(in Input) hook.Decision {
	command := in.ToolInput.Command
	if strings.TrimSpace(command) == "" {
		return hook.Block("%s: empty command blocked.", HookName)
	}

	if f.Allowed(command) {
		return hook.Allow()
	}

	return hook.Block("Blocked: reviewers can only run read-only verification commands.\nAttempted: %s\nAllowed commands: %s",
		command, strings.Join(f.prefixes, ", "))
}
