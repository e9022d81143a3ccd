package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imshahrukh/sitetracker/internal/theme"
)

// frameRows is the number of rows the frame itself consumes: one
// header row and one status bar row.
const frameRows = 2

// Layout frames every logged-in screen: a header row carrying the site
// session, the content area, and a status bar with key hints.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left for the content area between the
// header and the status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - frameRows
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar: the application title on the left
// and the session (logged-in user plus the active filter and sort
// labels) right-aligned. An empty user leaves the right side blank.
func (l Layout) RenderHeader(title, user, filters string) string {
	left := theme.HeaderStyle.Render(title)

	session := user
	if session != "" && filters != "" {
		session += " · " + filters
	}
	right := theme.HeaderStyle.Align(lipgloss.Right).Render(session)

	gap := l.fill(theme.HeaderStyle, lipgloss.Width(left)+lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
}

// RenderStatusBar renders the bottom bar. A non-empty errText replaces
// the key hints and is drawn in the error color so transient mutation
// failures are not mistaken for hints.
func (l Layout) RenderStatusBar(hints, errText string) string {
	style := theme.StatusBarStyle
	text := hints
	if errText != "" {
		style = style.Foreground(theme.ColorRed).Bold(true)
		text = errText
	}
	bar := style.Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Top, bar, l.fill(style, lipgloss.Width(bar)))
}

// Frame stacks the header, content area, and status bar into the full
// terminal frame.
func (l Layout) Frame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill pads the rest of a bar row with the style's background so the
// bar spans the full terminal width. The style's padding must not be
// inherited or the row would overflow.
func (l Layout) fill(style lipgloss.Style, used int) string {
	gap := l.Width - used
	if gap <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Background(style.GetBackground()).
		Render(strings.Repeat(" ", gap))
}
