package login

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imshahrukh/sitetracker/internal/theme"
)

// SubmitMsg carries a validated login name to the parent.
type SubmitMsg struct {
	Name string
}

// Form-level name constraints, applied before any mutation is issued.
// The store enforces its own (looser) schema limits independently.
const (
	minNameLength = 2
	maxNameLength = 50
)

var namePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// Model is the login view: a single name input.
type Model struct {
	input  textinput.Model
	errMsg string
	width  int
	height int
}

// New creates a new login model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.CharLimit = maxNameLength
	ti.Focus()

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command for the login view.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		name := strings.TrimSpace(m.input.Value())
		if errMsg := validateName(name); errMsg != "" {
			m.errMsg = errMsg
			return m, nil
		}
		m.errMsg = ""
		return m, func() tea.Msg {
			return SubmitMsg{Name: name}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the login view.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Site Tracker")

	prompt := "Log in with your name to see your tasks."

	parts := []string{title, prompt, "", m.input.View()}
	if m.errMsg != "" {
		parts = append(parts, "", theme.ErrorStyle.Render(m.errMsg))
	}
	parts = append(parts, "", theme.HelpStyle.Render("enter to continue, ctrl+c to quit"))

	box := theme.BorderStyle.
		Padding(1, 3).
		Render(strings.Join(parts, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reset clears the input for a fresh login after logout.
func (m *Model) Reset() {
	m.input.SetValue("")
	m.errMsg = ""
	m.input.Focus()
}

// validateName applies the form-level name constraints and returns an
// inline error message, or "" when valid.
func validateName(name string) string {
	switch {
	case name == "":
		return "Name is required"
	case len(name) < minNameLength:
		return "Name must be at least 2 characters"
	case len(name) > maxNameLength:
		return "Name must not exceed 50 characters"
	case !namePattern.MatchString(name):
		return "Name can only contain letters and spaces"
	}
	return ""
}
