package plan

import (
	"slices"
)

// Summary counts tasks per status. ByStatus is keyed by the lower-cased
// status value, or "unknown" for tasks without one; unlike Validate it
// accepts any status string as a bucket.
type Summary struct {
	Total      int                 `json:"total" yaml:"total"`
	Completed  int                 `json:"completed" yaml:"completed"`
	InProgress int                 `json:"in_progress" yaml:"in_progress"`
	Pending    int                 `json:"pending" yaml:"pending"`
	Failed     int                 `json:"failed" yaml:"failed"`
	ByStatus   map[string][]string `json:"by_status" yaml:"by_status"`
}

// Summarize buckets every task by status. Ids within a bucket are sorted.
func Summarize(tasks []Task) Summary {
	s := Summary{
		Total:    len(tasks),
		ByStatus: make(map[string][]string),
	}

	for _, t := range tasks {
		key := string(t.Status())
		if key == "" {
			key = StatusUnknown
		}
		s.ByStatus[key] = append(s.ByStatus[key], t.ID)
	}
	for _, ids := range s.ByStatus {
		slices.Sort(ids)
	}

	s.Completed = len(s.ByStatus[string(StatusCompleted)])
	s.InProgress = len(s.ByStatus[string(StatusInProgress)])
	s.Pending = len(s.ByStatus[string(StatusPending)])
	s.Failed = len(s.ByStatus[string(StatusFailed)])

	return s
}

// Statuses returns the bucket keys, sorted.
func (s Summary) Statuses() []string {
	keys := make([]string, 0, len(s.ByStatus))
	for k := range s.ByStatus {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
