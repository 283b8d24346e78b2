package plan

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/JairoTorregrosa/picopala/internal/errors"
)

// HeadingHint tells authors how a task heading must look.
const HeadingHint = "Tasks must be formatted as '### T1: Task Name'"

var (
	// taskIDPattern matches a task id anywhere in a string: T followed by
	// dot-separated digit groups.
	taskIDPattern = regexp.MustCompile(`T\d+(?:\.\d+)*`)

	// headingPattern matches "### T1: Name" lines. The name may be empty.
	headingPattern = regexp.MustCompile(`(?m)^###[ \t]+(T\d+(?:\.\d+)*):[ \t]*(.*)$`)

	// fieldPattern matches "- **name**: value" lines. The value may be empty
	// so that blank fields are still seen and reported as missing.
	fieldPattern = regexp.MustCompile(`(?m)^-[ \t]+\*\*(\w+(?:_\w+)*)\*\*:[ \t]*(.*)$`)
)

// ExtractIDs returns every task-id-shaped substring of s in order of
// appearance, duplicates included. "[T1, T2]", "T1, T2" and prose such as
// "after T1 and T2 land" all yield [T1 T2].
func ExtractIDs(s string) []string {
	ids := taskIDPattern.FindAllString(s, -1)
	if ids == nil {
		return []string{}
	}
	return ids
}

// Parse extracts the tasks of a plan document in document order.
// It returns an error wrapping errors.ErrNoTasksFound when the document has
// no task heading.
func Parse(text string) ([]Task, error) {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, errors.NewPlanError("No tasks found", errors.ErrNoTasksFound).WithHint(HeadingHint)
	}

	tasks := make([]Task, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		section := text[m[1]:end]

		task := Task{
			ID:     text[m[2]:m[3]],
			Name:   strings.TrimSpace(text[m[4]:m[5]]),
			Fields: parseFields(section),
		}
		task.DependsOn = ExtractIDs(task.Fields[FieldDependsOn])
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// parseFields collects the bullet fields of one task section. A field
// repeated within a section keeps its last value.
func parseFields(section string) map[string]string {
	fields := make(map[string]string)
	for _, fm := range fieldPattern.FindAllStringSubmatch(section, -1) {
		fields[fm[1]] = strings.TrimSpace(fm[2])
	}
	return fields
}

// Load reads the plan document at path from fs and parses it.
// A missing document yields a UsageError wrapping errors.ErrFileNotFound.
func Load(fs afero.Fs, path string) ([]Task, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewUsageError(fmt.Sprintf("File not found: %s", path), errors.ErrFileNotFound)
		}
		return nil, errors.Wrapf(err, "failed to read plan %s", path)
	}

	tasks, err := Parse(string(data))
	if err != nil {
		var planErr *errors.PlanError
		if errors.As(err, &planErr) {
			return nil, errors.NewPlanError(fmt.Sprintf("No tasks found in %s", path), errors.ErrNoTasksFound).
				WithPath(path).
				WithHint(HeadingHint)
		}
		return nil, err
	}
	return tasks, nil
}
