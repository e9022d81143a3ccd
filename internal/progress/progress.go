// Package progress derives task-level status and progress from
// checklist contents. All functions are pure and never mutate their
// inputs.
package progress

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/imshahrukh/sitetracker/internal/model"
)

// TaskStatus is the derived, task-level status, distinct from the
// per-item status enumeration.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not-started"
	StatusInProgress TaskStatus = "in-progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusCompleted  TaskStatus = "completed"
)

// FilterKey selects a subset of tasks by derived status.
type FilterKey string

const (
	FilterAll        FilterKey = "all"
	FilterBlocked    FilterKey = "blocked"
	FilterCompleted  FilterKey = "completed"
	FilterInProgress FilterKey = "in-progress"
)

// SortKey selects a task ordering.
type SortKey string

const (
	SortCreated SortKey = "created"
	SortTitle   SortKey = "title"
	SortStatus  SortKey = "status"
)

// Status derives the task-level status. Blocked wins outright;
// completed requires a non-empty checklist with every item DONE; any
// DONE or IN_PROGRESS item makes the task in-progress.
func Status(t model.Task) TaskStatus {
	if t.IsBlocked {
		return StatusBlocked
	}

	done, total := doneCount(t)
	if total > 0 && done == total {
		return StatusCompleted
	}
	for _, item := range t.Checklist {
		if item.Status == model.ItemDone || item.Status == model.ItemInProgress {
			return StatusInProgress
		}
	}
	return StatusNotStarted
}

// Percent returns the checklist completion percentage as the rounded
// ratio of DONE items to total items, and 0 for an empty checklist.
// Partially-started items earn no credit.
func Percent(t model.Task) int {
	done, total := doneCount(t)
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// Summary returns a short progress label: "Blocked", "Complete",
// "done/total", or "Not Started".
func Summary(t model.Task) string {
	if t.IsBlocked {
		return "Blocked"
	}

	done, total := doneCount(t)
	switch {
	case total > 0 && done == total:
		return "Complete"
	case done > 0:
		return fmt.Sprintf("%d/%d", done, total)
	default:
		return "Not Started"
	}
}

// Filter returns the tasks matching the filter key, preserving input
// order. The input slice is never modified.
func Filter(tasks []model.Task, key FilterKey) []model.Task {
	if key == FilterAll || key == "" {
		out := make([]model.Task, len(tasks))
		copy(out, tasks)
		return out
	}

	var out []model.Task
	for _, t := range tasks {
		if TaskStatus(key) == Status(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a new slice ordered by the given key. Title order is
// case-sensitive lexicographic; created order is newest first; ties
// keep their original relative order.
func Sort(tasks []model.Task, key SortKey) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)

	switch key {
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Compare(out[i].Title, out[j].Title) < 0
		})
	case SortStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return Status(out[i]) < Status(out[j])
		})
	default: // SortCreated
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// doneCount tallies DONE items against the checklist length.
func doneCount(t model.Task) (done, total int) {
	for _, item := range t.Checklist {
		if item.Status == model.ItemDone {
			done++
		}
	}
	return done, len(t.Checklist)
}
