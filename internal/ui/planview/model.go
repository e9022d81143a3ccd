// Package planview renders task markers on a character-cell grid, the
// terminal stand-in for the floor-plan image. Marker cells come from
// each task's normalized position scaled to the grid.
package planview

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/progress"
	"github.com/imshahrukh/sitetracker/internal/theme"
)

// markerRunes label up to 35 placed tasks on the grid; further tasks
// share the overflow marker.
const markerRunes = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Model is the floor-plan view component.
type Model struct {
	tasks      []model.Task
	gridWidth  int
	gridHeight int
	width      int
	height     int
}

// New creates a floor-plan view with the given grid dimensions.
func New(gridWidth, gridHeight, width, height int) Model {
	return Model{
		gridWidth:  gridWidth,
		gridHeight: gridHeight,
		width:      width,
		height:     height,
	}
}

// SetTasks replaces the rendered tasks.
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = tasks
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the grid, a legend of placed tasks, and the unplaced list.
func (m Model) View() string {
	var placed, unplaced []model.Task
	for _, t := range m.tasks {
		if t.Position != nil {
			placed = append(placed, t)
		} else {
			unplaced = append(unplaced, t)
		}
	}

	var b strings.Builder
	b.WriteString(m.renderGrid(placed))
	b.WriteString("\n")

	for i, t := range placed {
		label := markerLabel(i)
		status := progress.Status(t)
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			theme.StatusStyle(status).Render(label),
			t.Title,
			theme.HelpStyle.Render(fmt.Sprintf("(%d%%)", progress.Percent(t))),
		))
	}

	if len(unplaced) > 0 {
		b.WriteString(theme.HelpStyle.Render("unplaced:"))
		b.WriteString("\n")
		for _, t := range unplaced {
			b.WriteString(fmt.Sprintf("  · %s\n", t.Title))
		}
	}

	return b.String()
}

// renderGrid paints the marker grid with one cell per character.
func (m Model) renderGrid(placed []model.Task) string {
	type cell struct {
		label  string
		status progress.TaskStatus
	}

	cells := make(map[[2]int]cell, len(placed))
	for i, t := range placed {
		col := scale(t.Position.X, m.gridWidth)
		row := scale(t.Position.Y, m.gridHeight)
		// Last writer wins on collisions; the legend still lists all.
		cells[[2]int{row, col}] = cell{
			label:  markerLabel(i),
			status: progress.Status(t),
		}
	}

	var rows []string
	for row := 0; row < m.gridHeight; row++ {
		var line strings.Builder
		for col := 0; col < m.gridWidth; col++ {
			if c, ok := cells[[2]int{row, col}]; ok {
				line.WriteString(
					lipgloss.NewStyle().Bold(true).
						Foreground(statusColor(c.status)).
						Render(c.label))
				continue
			}
			line.WriteString("·")
		}
		rows = append(rows, line.String())
	}

	return theme.BorderStyle.Render(strings.Join(rows, "\n"))
}

// markerLabel returns the grid label for the i-th placed task.
func markerLabel(i int) string {
	if i < len(markerRunes) {
		return string(markerRunes[i])
	}
	return "+"
}

// scale maps a normalized [0,1] coordinate onto a grid axis.
func scale(v float64, size int) int {
	idx := int(math.Round(v * float64(size-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > size-1 {
		idx = size - 1
	}
	return idx
}

func statusColor(s progress.TaskStatus) lipgloss.AdaptiveColor {
	switch s {
	case progress.StatusBlocked:
		return theme.ColorRed
	case progress.StatusCompleted:
		return theme.ColorGreen
	case progress.StatusInProgress:
		return theme.ColorYellow
	default:
		return theme.ColorGray
	}
}
