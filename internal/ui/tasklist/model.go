package tasklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imshahrukh/sitetracker/internal/keys"
	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/progress"
)

// OpenDetailMsg signals the parent to open the detail view for a task.
type OpenDetailMsg struct {
	TaskID string
}

// filterCycle is the order the filter key steps through.
var filterCycle = []progress.FilterKey{
	progress.FilterAll,
	progress.FilterInProgress,
	progress.FilterBlocked,
	progress.FilterCompleted,
}

// sortCycle is the order the sort key steps through.
var sortCycle = []progress.SortKey{
	progress.SortCreated,
	progress.SortTitle,
	progress.SortStatus,
}

// Model is the task list view component.
type Model struct {
	list   list.Model
	tasks  []model.Task
	filter progress.FilterKey
	sort   progress.SortKey
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new task list model with the given display defaults.
func New(k *keys.KeyMap, filter progress.FilterKey, sortBy progress.SortKey, width, height int) Model {
	l := list.New(nil, ItemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	if filter == "" {
		filter = progress.FilterAll
	}
	if sortBy == "" {
		sortBy = progress.SortCreated
	}

	return Model{
		list:   l,
		filter: filter,
		sort:   sortBy,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetTasks replaces the displayed tasks, reapplying filter and sort.
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = tasks
	m.refresh()
}

// Selected returns the task under the cursor, or nil.
func (m *Model) Selected() *model.Task {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return nil
	}
	t := item.Task
	return &t
}

// FilterLabel returns the active filter for the header.
func (m *Model) FilterLabel() string {
	return fmt.Sprintf("filter:%s sort:%s", m.filter, m.sort)
}

// Update handles messages for the task list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Select):
			if sel := m.Selected(); sel != nil {
				id := sel.ID
				return m, func() tea.Msg {
					return OpenDetailMsg{TaskID: id}
				}
			}
			return m, nil

		case key.Matches(km, m.keys.CycleFilter):
			m.filter = next(filterCycle, m.filter)
			m.refresh()
			return m, nil

		case key.Matches(km, m.keys.CycleSort):
			m.sort = next(sortCycle, m.sort)
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list.
func (m Model) View() string {
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// refresh reapplies filter and sort to the cached tasks.
func (m *Model) refresh() {
	visible := progress.Sort(progress.Filter(m.tasks, m.filter), m.sort)

	items := make([]list.Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, TaskItem{Task: t})
	}
	m.list.SetItems(items)
}

// next steps through a cycle of keys, wrapping at the end.
func next[T comparable](cycle []T, current T) T {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}
