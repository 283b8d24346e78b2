package plan

import (
	"fmt"
	"strings"
)

// section renders one task in plan document form with every required field.
func section(id, name, deps, status string) string {
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

// newTask builds a fully populated task as the parser would produce it.
func newTask(id, status string, deps ...string) Task {
	if deps == nil {
		deps = []string{}
	}
	return Task{
		ID:   id,
		Name: "Task " + id,
		Fields: map[string]string{
			FieldDependsOn:          "[" + strings.Join(deps, ", ") + "]",
			FieldLocation:           "src/",
			FieldDescription:        "Do the work",
			FieldAcceptanceCriteria: "It works",
			FieldValidation:         "go test ./...",
			FieldStatus:             status,
		},
		DependsOn: deps,
	}
}
