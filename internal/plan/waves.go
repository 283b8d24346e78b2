package plan

import (
	"slices"

	"github.com/JairoTorregrosa/picopala/internal/errors"
)

// ComputeWaves partitions the non-completed tasks into waves. Every task in a
// wave has all of its dependencies either already completed or placed in an
// earlier wave. Within a wave ids are sorted, so the output is identical for
// identical input.
//
// Tasks in status completed never appear in a wave and satisfy their
// dependents. When no further wave can be formed while tasks remain, the
// result is a *errors.DeadlockError; this covers cycles as well as references
// to undeclared tasks, so callers should run Validate first for a descriptive
// report.
func ComputeWaves(tasks []Task) ([][]string, error) {
	byID := Index(tasks)

	completed := make(map[string]bool, len(byID))
	pending := make(map[string]bool, len(byID))
	for id, t := range byID {
		if t.IsCompleted() {
			completed[id] = true
		} else {
			pending[id] = true
		}
	}

	var waves [][]string
	maxIterations := len(tasks) + 1

	for iteration := 0; len(pending) > 0; {
		var wave []string
		for _, id := range sortedKeys(pending) {
			if dependenciesMet(byID[id], completed) {
				wave = append(wave, id)
			}
		}

		if len(wave) == 0 {
			return nil, errors.NewDeadlockError(sortedKeys(pending), sortedKeys(completed))
		}

		waves = append(waves, wave)
		for _, id := range wave {
			completed[id] = true
			delete(pending, id)
		}

		iteration++
		if iteration > maxIterations {
			return nil, errors.ErrIterationLimit
		}
	}

	return waves, nil
}

func dependenciesMet(task Task, completed map[string]bool) bool {
	for _, dep := range task.DependsOn {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// TaskRef is the per-task entry of a rendered wave.
type TaskRef struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	DependsOn []string `json:"depends_on" yaml:"depends_on"`
}

// WaveReport is one wave as emitted by the waves command.
type WaveReport struct {
	Wave  int       `json:"wave" yaml:"wave"`
	Tasks []TaskRef `json:"tasks" yaml:"tasks"`
}

// BuildWaveReports pairs computed waves with task names and dependencies.
// Waves are numbered from 1.
func BuildWaveReports(tasks []Task, waves [][]string) []WaveReport {
	byID := Index(tasks)

	reports := make([]WaveReport, 0, len(waves))
	for i, wave := range waves {
		refs := make([]TaskRef, 0, len(wave))
		for _, id := range wave {
			t := byID[id]
			deps := slices.Clone(t.DependsOn)
			if deps == nil {
				deps = []string{}
			}
			refs = append(refs, TaskRef{ID: id, Name: t.Name, DependsOn: deps})
		}
		reports = append(reports, WaveReport{Wave: i + 1, Tasks: refs})
	}
	return reports
}
