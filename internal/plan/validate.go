package plan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JairoTorregrosa/picopala/internal/errors"
)

// Validate checks the structure of a plan and returns every issue found.
// An empty result means the plan is valid. It never stops at the first
// problem: required fields, status values and dependency references are
// checked per task in document order, followed by duplicate ids and cycles.
func Validate(tasks []Task) []Issue {
	var issues []Issue

	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	available := sortedKeys(ids)

	for _, task := range tasks {
		issues = append(issues, validateFields(task)...)
		issues = append(issues, validateStatus(task)...)
		issues = append(issues, validateReferences(task, ids, available)...)
	}

	issues = append(issues, validateUniqueIDs(tasks)...)
	issues = append(issues, DetectCycles(tasks)...)

	return issues
}

// validateFields reports required fields that are missing or blank.
// depends_on is always satisfied: the parser materializes it as a list.
func validateFields(task Task) []Issue {
	var issues []Issue
	for _, field := range RequiredFields {
		if field == FieldDependsOn {
			continue
		}
		if v, ok := task.Field(field); ok && strings.TrimSpace(v) != "" {
			continue
		}
		issues = append(issues, Issue{
			Kind:    IssueMissingField,
			TaskID:  task.ID,
			Field:   field,
			Message: fmt.Sprintf("%s: missing required field '%s'", task.ID, field),
		})
	}
	return issues
}

// validateStatus reports a non-empty status outside the enumeration.
func validateStatus(task Task) []Issue {
	status := task.Status()
	if status == "" || status.IsValid() {
		return nil
	}

	valid := make([]string, 0, len(ValidStatuses()))
	for _, s := range ValidStatuses() {
		valid = append(valid, string(s))
	}

	return []Issue{{
		Kind:    IssueInvalidStatus,
		TaskID:  task.ID,
		Field:   FieldStatus,
		Message: fmt.Sprintf("%s: invalid status '%s'. Must be one of: %s", task.ID, status, errors.FormatIDs(valid)),
	}}
}

// validateReferences reports dependencies that name no task.
func validateReferences(task Task, ids map[string]bool, available []string) []Issue {
	var issues []Issue
	for _, dep := range task.DependsOn {
		if ids[dep] {
			continue
		}
		issues = append(issues, Issue{
			Kind:       IssueUnknownDependency,
			TaskID:     task.ID,
			Field:      FieldDependsOn,
			RelatedIDs: []string{dep},
			Message: fmt.Sprintf("%s: depends on '%s' which does not exist. Available: %s",
				task.ID, dep, errors.FormatIDs(available)),
		})
	}
	return issues
}

// validateUniqueIDs reports each id declared more than once, in order of
// first appearance.
func validateUniqueIDs(tasks []Task) []Issue {
	counts := make(map[string]int, len(tasks))
	var order []string
	for _, t := range tasks {
		if counts[t.ID] == 0 {
			order = append(order, t.ID)
		}
		counts[t.ID]++
	}

	var issues []Issue
	for _, id := range order {
		if counts[id] < 2 {
			continue
		}
		issues = append(issues, Issue{
			Kind:    IssueDuplicateID,
			TaskID:  id,
			Message: fmt.Sprintf("%s: duplicate task id declared %d times", id, counts[id]),
		})
	}
	return issues
}

// dfsFrame is one entry of the explicit traversal stack.
type dfsFrame struct {
	node string
	next int
}

// DetectCycles reports every back edge found by a depth-first traversal of
// the graph whose edges run from a dependency to its dependents. Roots are
// visited in lexicographic order and neighbors in document order, so the
// result is deterministic. The traversal uses an explicit stack and never
// recurses, so plan depth is bounded only by memory.
func DetectCycles(tasks []Task) []Issue {
	adj := make(map[string][]string)
	nodes := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		nodes[task.ID] = true
		for _, dep := range task.DependsOn {
			adj[dep] = append(adj[dep], task.ID)
		}
	}

	var issues []Issue
	visited := make(map[string]bool, len(nodes))
	onStack := make(map[string]bool)

	for _, root := range sortedKeys(nodes) {
		if visited[root] {
			continue
		}

		visited[root] = true
		onStack[root] = true
		stack := []dfsFrame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adj[top.node]

			if top.next >= len(neighbors) {
				onStack[top.node] = false
				stack = stack[:len(stack)-1]
				continue
			}

			neighbor := neighbors[top.next]
			top.next++

			switch {
			case onStack[neighbor]:
				issues = append(issues, Issue{
					Kind:       IssueCycle,
					TaskID:     top.node,
					Field:      FieldDependsOn,
					RelatedIDs: []string{top.node, neighbor},
					Message:    fmt.Sprintf("Circular dependency detected involving '%s' -> '%s'", top.node, neighbor),
				})
			case !visited[neighbor]:
				visited[neighbor] = true
				onStack[neighbor] = true
				stack = append(stack, dfsFrame{node: neighbor})
			}
		}
	}

	return issues
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
