package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imshahrukh/sitetracker/internal/keys"
	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/progress"
	"github.com/imshahrukh/sitetracker/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// EditTaskMsg signals the parent to open the edit form for the task.
type EditTaskMsg struct {
	TaskID string
}

// DeleteTaskMsg signals the parent to delete the task.
type DeleteTaskMsg struct {
	TaskID string
}

// SetItemStatusMsg signals the parent to change a checklist item status.
type SetItemStatusMsg struct {
	TaskID string
	ItemID string
	Status model.ItemStatus
}

// AddItemMsg signals the parent to append a checklist item.
type AddItemMsg struct {
	TaskID string
	Text   string
}

// RemoveItemMsg signals the parent to remove a checklist item.
type RemoveItemMsg struct {
	TaskID string
	ItemID string
}

// statusCycle is the order the space key steps an item through. Any
// status can still be reached from any other by cycling; transitions
// are deliberately unconstrained.
var statusCycle = []model.ItemStatus{
	model.ItemNotStarted,
	model.ItemInProgress,
	model.ItemBlocked,
	model.ItemFinalCheckAwaiting,
	model.ItemDone,
}

// Maximum checklist item text length at the form level.
const maxItemTextLength = 200

// Model is the task detail view: task fields plus an editable checklist.
type Model struct {
	task     *model.Task
	cursor   int
	adding   bool
	input    textinput.Model
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	ti := textinput.New()
	ti.Placeholder = "New checklist item"
	ti.CharLimit = maxItemTextLength

	return Model{
		viewport: vp,
		input:    ti,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// SetTask replaces the displayed task, keeping the cursor in range.
// Called by the parent whenever a fresh snapshot arrives.
func (m *Model) SetTask(t *model.Task) {
	m.task = t
	if t == nil {
		return
	}
	if m.cursor >= len(t.Checklist) {
		m.cursor = len(t.Checklist) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.viewport.SetContent(m.renderContent())
}

// TextEntryActive reports whether the add-item input is capturing
// keystrokes. The parent must not treat keys as shortcuts while true.
func (m Model) TextEntryActive() bool {
	return m.adding
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.adding {
		return m.updateAdding(km)
	}

	switch {
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(km, m.keys.Down):
		if m.task != nil && m.cursor < len(m.task.Checklist)-1 {
			m.cursor++
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case key.Matches(km, m.keys.CycleStatus):
		if item := m.currentItem(); item != nil {
			taskID, itemID := m.task.ID, item.ID
			status := nextStatus(item.Status)
			return m, func() tea.Msg {
				return SetItemStatusMsg{TaskID: taskID, ItemID: itemID, Status: status}
			}
		}
		return m, nil

	case key.Matches(km, m.keys.AddItem):
		m.adding = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(km, m.keys.RemoveItem):
		if item := m.currentItem(); item != nil {
			taskID, itemID := m.task.ID, item.ID
			return m, func() tea.Msg {
				return RemoveItemMsg{TaskID: taskID, ItemID: itemID}
			}
		}
		return m, nil

	case key.Matches(km, m.keys.EditTask):
		if m.task != nil {
			taskID := m.task.ID
			return m, func() tea.Msg {
				return EditTaskMsg{TaskID: taskID}
			}
		}
		return m, nil

	case key.Matches(km, m.keys.DeleteTask):
		if m.task != nil {
			taskID := m.task.ID
			return m, func() tea.Msg {
				return DeleteTaskMsg{TaskID: taskID}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateAdding handles keys while the add-item input is open.
func (m Model) updateAdding(km tea.KeyMsg) (Model, tea.Cmd) {
	switch km.Type {
	case tea.KeyEscape:
		m.adding = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.task == nil {
			return m, nil
		}
		m.adding = false
		m.input.Blur()
		taskID := m.task.ID
		return m, func() tea.Msg {
			return AddItemMsg{TaskID: taskID, Text: text}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(km)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	if m.adding {
		return m.viewport.View() + "\n" + m.input.View()
	}
	return m.viewport.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// currentItem returns the checklist item under the cursor, or nil.
func (m *Model) currentItem() *model.ChecklistItem {
	if m.task == nil || m.cursor < 0 || m.cursor >= len(m.task.Checklist) {
		return nil
	}
	return &m.task.Checklist[m.cursor]
}

// renderContent builds the full detail content string for the viewport.
func (m *Model) renderContent() string {
	t := m.task
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n")

	status := progress.Status(*t)
	b.WriteString(theme.StatusStyle(status).Render(string(status)))
	b.WriteString(fmt.Sprintf("  %d%% · %s", progress.Percent(*t), progress.Summary(*t)))
	b.WriteString("\n")

	if t.Position != nil {
		b.WriteString(theme.HelpStyle.Render(
			fmt.Sprintf("placed at (%.2f, %.2f)", t.Position.X, t.Position.Y)))
	} else {
		b.WriteString(theme.HelpStyle.Render("unplaced"))
	}
	b.WriteString("\n\n")

	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Checklist"))
	b.WriteString("\n")

	if len(t.Checklist) == 0 {
		b.WriteString(theme.HelpStyle.Render("no items"))
		b.WriteString("\n")
	}

	for i, item := range t.Checklist {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		badge := theme.ItemStatusStyle(string(item.Status)).Render(string(item.Status))
		line := fmt.Sprintf("%s%s %s", marker, badge, item.Text)
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return theme.DetailPanelStyle.Width(m.width - 2).Render(b.String())
}

// nextStatus returns the status after s in the cycle.
func nextStatus(s model.ItemStatus) model.ItemStatus {
	for i, v := range statusCycle {
		if v == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return model.ItemNotStarted
}
