package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/progress"
)

func taskWith(statuses ...model.ItemStatus) model.Task {
	items := make([]model.ChecklistItem, len(statuses))
	for i, st := range statuses {
		items[i] = model.ChecklistItem{ID: string(rune('a' + i)), Text: "step", Status: st}
	}
	return model.Task{ID: "t", Checklist: items}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		task model.Task
		want progress.TaskStatus
	}{
		{"empty checklist", taskWith(), progress.StatusNotStarted},
		{"all not started", taskWith(model.ItemNotStarted, model.ItemNotStarted), progress.StatusNotStarted},
		{"final check only", taskWith(model.ItemFinalCheckAwaiting), progress.StatusNotStarted},
		{"one in progress", taskWith(model.ItemInProgress, model.ItemNotStarted), progress.StatusInProgress},
		{"one done of two", taskWith(model.ItemDone, model.ItemNotStarted), progress.StatusInProgress},
		{"all done", taskWith(model.ItemDone, model.ItemDone), progress.StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, progress.Status(tc.task))
		})
	}
}

func TestStatusBlockedWins(t *testing.T) {
	task := taskWith(model.ItemDone, model.ItemDone)
	task.IsBlocked = true
	assert.Equal(t, progress.StatusBlocked, progress.Status(task))
}

func TestPercent(t *testing.T) {
	cases := []struct {
		name string
		task model.Task
		want int
	}{
		{"empty checklist", taskWith(), 0},
		{"none done", taskWith(model.ItemNotStarted, model.ItemInProgress), 0},
		{"one of two", taskWith(model.ItemDone, model.ItemNotStarted), 50},
		{"one of three rounds", taskWith(model.ItemDone, model.ItemNotStarted, model.ItemNotStarted), 33},
		{"two of three rounds", taskWith(model.ItemDone, model.ItemDone, model.ItemNotStarted), 67},
		{"all done", taskWith(model.ItemDone, model.ItemDone), 100},
		{"final check earns nothing", taskWith(model.ItemFinalCheckAwaiting, model.ItemDone), 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, progress.Percent(tc.task))
		})
	}
}

func TestSummary(t *testing.T) {
	blocked := taskWith(model.ItemDone)
	blocked.IsBlocked = true

	assert.Equal(t, "Blocked", progress.Summary(blocked))
	assert.Equal(t, "Complete", progress.Summary(taskWith(model.ItemDone)))
	assert.Equal(t, "1/3", progress.Summary(taskWith(model.ItemDone, model.ItemNotStarted, model.ItemInProgress)))
	assert.Equal(t, "Not Started", progress.Summary(taskWith(model.ItemNotStarted)))
	assert.Equal(t, "Not Started", progress.Summary(taskWith()))
}

func TestFilter(t *testing.T) {
	done := taskWith(model.ItemDone)
	done.ID = "done"
	started := taskWith(model.ItemInProgress)
	started.ID = "started"
	blocked := taskWith(model.ItemBlocked)
	blocked.ID = "blocked"
	blocked.IsBlocked = true

	tasks := []model.Task{done, started, blocked}

	all := progress.Filter(tasks, progress.FilterAll)
	assert.Len(t, all, 3)

	completed := progress.Filter(tasks, progress.FilterCompleted)
	if assert.Len(t, completed, 1) {
		assert.Equal(t, "done", completed[0].ID)
	}

	inProgress := progress.Filter(tasks, progress.FilterInProgress)
	if assert.Len(t, inProgress, 1) {
		assert.Equal(t, "started", inProgress[0].ID)
	}

	blockedOnly := progress.Filter(tasks, progress.FilterBlocked)
	if assert.Len(t, blockedOnly, 1) {
		assert.Equal(t, "blocked", blockedOnly[0].ID)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{taskWith(model.ItemDone), taskWith(model.ItemNotStarted)}
	progress.Filter(tasks, progress.FilterCompleted)
	assert.Len(t, tasks, 2)

	out := progress.Filter(tasks, progress.FilterAll)
	out[0].ID = "changed"
	assert.Equal(t, "t", tasks[0].ID)
}

func TestSortCreatedNewestFirst(t *testing.T) {
	base := time.Now()
	old := model.Task{ID: "old", CreatedAt: base.Add(-time.Hour)}
	mid := model.Task{ID: "mid", CreatedAt: base.Add(-time.Minute)}
	recent := model.Task{ID: "recent", CreatedAt: base}

	out := progress.Sort([]model.Task{old, recent, mid}, progress.SortCreated)
	assert.Equal(t, []string{"recent", "mid", "old"}, ids(out))
}

func TestSortTitle(t *testing.T) {
	a := model.Task{ID: "a", Title: "Asphalt"}
	b := model.Task{ID: "b", Title: "Brickwork"}
	z := model.Task{ID: "z", Title: "Zoning"}

	out := progress.Sort([]model.Task{z, a, b}, progress.SortTitle)
	assert.Equal(t, []string{"a", "b", "z"}, ids(out))
}

func TestSortStable(t *testing.T) {
	base := time.Now()
	first := model.Task{ID: "first", Title: "Same", CreatedAt: base}
	second := model.Task{ID: "second", Title: "Same", CreatedAt: base}

	out := progress.Sort([]model.Task{first, second}, progress.SortTitle)
	assert.Equal(t, []string{"first", "second"}, ids(out))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	base := time.Now()
	tasks := []model.Task{
		{ID: "old", CreatedAt: base.Add(-time.Hour)},
		{ID: "recent", CreatedAt: base},
	}
	progress.Sort(tasks, progress.SortCreated)
	assert.Equal(t, "old", tasks[0].ID)
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
