// Package testutil provides testing utilities for picopala tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// Section renders one task in plan document form with every required field.
// deps is written verbatim as the depends_on value.
func Section(id, name, deps, status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s: %s\n", id, name)
	fmt.Fprintf(&b, "- **depends_on**: %s\n", deps)
	b.WriteString("- **location**: src/\n")
	b.WriteString("- **description**: Do the work\n")
	b.WriteString("- **acceptance_criteria**: It works\n")
	b.WriteString("- **validation**: go test ./...\n")
	fmt.Fprintf(&b, "- **status**: %s\n\n", status)
	return b.String()
}

// Plan joins sections under a document title.
func Plan(sections ...string) string {
	return "# Plan\n\n" + strings.Join(sections, "")
}

// ValidPlan is a three-task plan whose first task is completed.
// Its waves are [[T2], [T3]].
func ValidPlan() string {
	return Plan(
		Section("T1", "Research", "[]", "completed"),
		Section("T2", "Build", "[T1]", "pending"),
		Section("T3", "Ship", "[T1, T2]", "in_progress"),
	)
}

// InvalidPlan is a plan with an unknown dependency and a bad status.
func InvalidPlan() string {
	return Plan(
		Section("T1", "Research", "[]", "pending"),
		Section("T2", "Build", "[T9]", "done"),
	)
}

// CyclicPlan is a plan whose two tasks depend on each other.
func CyclicPlan() string {
	return Plan(
		Section("T1", "Research", "[T2]", "pending"),
		Section("T2", "Build", "[T1]", "pending"),
	)
}

// WritePlan writes content to path on fs, creating parent directories.
func WritePlan(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write plan %s: %v", path, err)
	}
}

// WritePlanFile writes a plan to a real temporary directory and returns its
// path. The directory is removed when the test completes.
func WritePlanFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plan.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write plan %s: %v", path, err)
	}
	return path
}
