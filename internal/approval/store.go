package approval

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"
)

// Store records which tasks of a team have been approved.
type Store interface {
	IsApproved(team, task string) (bool, error)
	Approve(team, task string) error
	Revoke(team, task string) error
}

// MarkerBody is the content written to a marker file.
const MarkerBody = "APPROVED\n"

const markerExt = ".approved"

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeID replaces every character outside [a-zA-Z0-9_-] with '_'.
func SanitizeID(raw string) string {
	return unsafeIDChars.ReplaceAllString(raw, "_")
}

// MarkerStore is a Store backed by marker files on an afero.Fs.
type MarkerStore struct {
	fs   afero.Fs
	root string
}

var _ Store = (*MarkerStore)(nil)

// NewMarkerStore creates a MarkerStore rooted at root.
func NewMarkerStore(fs afero.Fs, root string) *MarkerStore {
	return &MarkerStore{fs: fs, root: root}
}

// Root returns the state directory.
func (s *MarkerStore) Root() string {
	return s.root
}

// TeamDir returns the directory holding the team's markers.
func (s *MarkerStore) TeamDir(team string) string {
	return filepath.Join(s.root, SanitizeID(team))
}

// MarkerPath returns the marker file path for a task.
func (s *MarkerStore) MarkerPath(team, task string) string {
	return filepath.Join(s.TeamDir(team), SanitizeID(task)+markerExt)
}

// IsApproved reports whether the task's marker exists.
func (s *MarkerStore) IsApproved(team, task string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.MarkerPath(team, task))
	if err != nil {
		return false, fmt.Errorf("check approval marker: %w", err)
	}
	return ok, nil
}

// Approve writes the task's marker, creating the team directory if needed.
// Approving twice is not an error.
func (s *MarkerStore) Approve(team, task string) error {
	if err := s.fs.MkdirAll(s.TeamDir(team), 0755); err != nil {
		return fmt.Errorf("create approval directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.MarkerPath(team, task), []byte(MarkerBody), 0644); err != nil {
		return fmt.Errorf("write approval marker: %w", err)
	}
	return nil
}

// Revoke removes the task's marker. Revoking a missing marker is not an error.
func (s *MarkerStore) Revoke(team, task string) error {
	err := s.fs.Remove(s.MarkerPath(team, task))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove approval marker: %w", err)
	}
	return nil
}
