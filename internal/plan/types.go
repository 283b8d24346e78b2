package plan

import (
	"strings"
)

// Field names recognized in a task section.
const (
	FieldDependsOn          = "depends_on"
	FieldLocation           = "location"
	FieldDescription        = "description"
	FieldAcceptanceCriteria = "acceptance_criteria"
	FieldValidation         = "validation"
	FieldStatus             = "status"
)

// RequiredFields lists the fields every task must carry, in reporting order.
var RequiredFields = []string{
	FieldDependsOn,
	FieldLocation,
	FieldDescription,
	FieldAcceptanceCriteria,
	FieldValidation,
	FieldStatus,
}

// Status is the lifecycle state recorded in a task's status field.
type Status string

const (
	// StatusPending indicates work has not started.
	StatusPending Status = "pending"
	// StatusInProgress indicates work is underway.
	StatusInProgress Status = "in_progress"
	// StatusCompleted indicates the task is done and satisfies its dependents.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the task failed.
	StatusFailed Status = "failed"
)

// StatusUnknown is the aggregation bucket for tasks without a status.
const StatusUnknown = "unknown"

// ValidStatuses returns the closed status enumeration, sorted.
func ValidStatuses() []Status {
	return []Status{StatusCompleted, StatusFailed, StatusInProgress, StatusPending}
}

// IsValid reports whether s is a member of the status enumeration.
// The comparison is case-insensitive.
func (s Status) IsValid() bool {
	switch Status(strings.ToLower(string(s))) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Task is one unit of work parsed from a plan heading and its bullet fields.
type Task struct {
	// ID is the heading identifier, e.g. "T1" or "T2.3".
	ID string `json:"id" yaml:"id"`
	// Name is the heading text after the identifier.
	Name string `json:"name" yaml:"name"`
	// Fields holds every bullet field of the section, values trimmed.
	// The raw depends_on value is kept here as written.
	Fields map[string]string `json:"fields" yaml:"fields"`
	// DependsOn holds every task id found in the depends_on value, in
	// document order, duplicates included. Never nil.
	DependsOn []string `json:"depends_on" yaml:"depends_on"`
}

// Field returns the trimmed value of a field and whether it was present.
func (t Task) Field(name string) (string, bool) {
	v, ok := t.Fields[name]
	return v, ok
}

// Status returns the task status lower-cased, or "" when absent or blank.
func (t Task) Status() Status {
	return Status(strings.ToLower(strings.TrimSpace(t.Fields[FieldStatus])))
}

// IsCompleted reports whether the task is already done.
func (t Task) IsCompleted() bool {
	return t.Status() == StatusCompleted
}

// IssueKind classifies a validation finding.
type IssueKind string

const (
	// IssueMissingField is a required field that is absent or blank.
	IssueMissingField IssueKind = "missing_field"
	// IssueInvalidStatus is a status outside the enumeration.
	IssueInvalidStatus IssueKind = "invalid_status"
	// IssueUnknownDependency is a depends_on entry naming no task.
	IssueUnknownDependency IssueKind = "unknown_dependency"
	// IssueDuplicateID is a task id declared more than once.
	IssueDuplicateID IssueKind = "duplicate_id"
	// IssueCycle is a dependency edge that closes a cycle.
	IssueCycle IssueKind = "cycle"
)

// Issue is a single validation finding. Message is the complete text shown
// to users; the other fields let callers filter without parsing it.
type Issue struct {
	Kind       IssueKind `json:"kind"`
	TaskID     string    `json:"task_id,omitempty"`
	Field      string    `json:"field,omitempty"`
	RelatedIDs []string  `json:"related_ids,omitempty"`
	Message    string    `json:"message"`
}

// String returns the issue message.
func (i Issue) String() string {
	return i.Message
}

// Messages returns the message of every issue, in order.
func Messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}
	return out
}

// Index maps each task id to its task. When an id is declared more than once
// the later declaration wins.
func Index(tasks []Task) map[string]Task {
	m := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}
