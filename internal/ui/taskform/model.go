package taskform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/theme"
)

// CreatedMsg is dispatched when a new task is submitted via the form.
type CreatedMsg struct {
	Title       string
	Description string
	Position    *model.Position
}

// UpdatedMsg is dispatched when an existing task is edited via the form.
type UpdatedMsg struct {
	TaskID      string
	Title       string
	Description string
	Position    *model.Position
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// Form-level field constraints, applied before any mutation is issued.
const (
	minTitleLength       = 3
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	posX        string
	posY        string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.title = ""
	m.fb.description = ""
	m.fb.posX = ""
	m.fb.posY = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	m.fb.title = t.Title
	m.fb.description = t.Description
	if t.Position != nil {
		m.fb.posX = strconv.FormatFloat(t.Position.X, 'f', 2, 64)
		m.fb.posY = strconv.FormatFloat(t.Position.Y, 'f', 2, 64)
	} else {
		m.fb.posX = ""
		m.fb.posY = ""
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs doing on site?").
				Value(&m.fb.title).
				Validate(validateTitle),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description).
				Validate(validateDescription),
			huh.NewInput().
				Title("Plan X (0..1)").
				Placeholder("Leave empty for unplaced").
				Value(&m.fb.posX).
				Validate(validateCoordinate),
			huh.NewInput().
				Title("Plan Y (0..1)").
				Placeholder("Leave empty for unplaced").
				Value(&m.fb.posY).
				Validate(validateCoordinate),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) formWidth() int {
	w := m.width - 4
	if w > 70 {
		w = 70
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (m *Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// handleSubmit converts the bound form values into a result message.
func (m *Model) handleSubmit() tea.Cmd {
	title := strings.TrimSpace(m.fb.title)
	description := strings.TrimSpace(m.fb.description)
	pos := parsePosition(m.fb.posX, m.fb.posY)

	if m.editMode {
		editID := m.editID
		return func() tea.Msg {
			return UpdatedMsg{
				TaskID:      editID,
				Title:       title,
				Description: description,
				Position:    pos,
			}
		}
	}
	return func() tea.Msg {
		return CreatedMsg{
			Title:       title,
			Description: description,
			Position:    pos,
		}
	}
}

// parsePosition converts the coordinate inputs into a Position, or nil
// when either is empty.
func parsePosition(xs, ys string) *model.Position {
	xs, ys = strings.TrimSpace(xs), strings.TrimSpace(ys)
	if xs == "" || ys == "" {
		return nil
	}
	x, errX := strconv.ParseFloat(xs, 64)
	y, errY := strconv.ParseFloat(ys, 64)
	if errX != nil || errY != nil {
		return nil
	}
	return &model.Position{X: x, Y: y}
}

func validateTitle(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("task title is required")
	}
	if len(s) < minTitleLength {
		return fmt.Errorf("title must be at least %d characters", minTitleLength)
	}
	if len(s) > maxTitleLength {
		return fmt.Errorf("title must not exceed %d characters", maxTitleLength)
	}
	return nil
}

func validateDescription(s string) error {
	if len(strings.TrimSpace(s)) > maxDescriptionLength {
		return fmt.Errorf("description must not exceed %d characters", maxDescriptionLength)
	}
	return nil
}

func validateCoordinate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("must be a number between 0 and 1")
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("must be within 0 and 1")
	}
	return nil
}
