package plan

// Analysis is the result of one full pass over a plan snapshot.
type Analysis struct {
	Tasks   []Task
	Issues  []Issue
	Summary Summary
	// Waves is set only when Issues is empty and scheduling succeeded.
	Waves []WaveReport
	// WaveErr is the scheduling failure, if scheduling ran and failed.
	WaveErr error
}

// Valid reports whether the plan had no validation issues.
func (a Analysis) Valid() bool {
	return len(a.Issues) == 0
}

// Analyze validates and summarizes the tasks and, if validation passed,
// computes the waves. Scheduling is skipped for an invalid plan.
func Analyze(tasks []Task) Analysis {
	a := Analysis{
		Tasks:   tasks,
		Issues:  Validate(tasks),
		Summary: Summarize(tasks),
	}
	if !a.Valid() {
		return a
	}

	waves, err := ComputeWaves(tasks)
	if err != nil {
		a.WaveErr = err
		return a
	}
	a.Waves = BuildWaveReports(tasks, waves)
	return a
}
