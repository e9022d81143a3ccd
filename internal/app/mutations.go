package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/tasks"
)

// mutationResultMsg reports the outcome of an asynchronous mutation.
// Successful writes surface through the live query, so only the error
// matters here.
type mutationResultMsg struct {
	err error
}

func (m Model) loginCmd(name string) tea.Cmd {
	return func() tea.Msg {
		u, err := m.svc.Login(context.Background(), name)
		return loggedInMsg{user: u, err: err}
	}
}

func (m Model) createTask(title, description string, pos *model.Position) tea.Cmd {
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	return func() tea.Msg {
		err := m.svc.Create(context.Background(), userID, title, description, pos)
		return mutationResultMsg{err: err}
	}
}

func (m Model) updateTask(taskID, title, description string, pos *model.Position) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.Update(context.Background(), taskID, tasks.Update{
			Title:       &title,
			Description: &description,
			Position:    pos,
		})
		return mutationResultMsg{err: err}
	}
}

func (m Model) deleteTask(taskID string) tea.Cmd {
	return func() tea.Msg {
		return mutationResultMsg{err: m.svc.Delete(context.Background(), taskID)}
	}
}

func (m Model) setItemStatus(taskID, itemID string, status model.ItemStatus) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.UpdateItem(context.Background(), taskID, itemID, tasks.ItemUpdate{
			Status: &status,
		})
		return mutationResultMsg{err: err}
	}
}

func (m Model) addItem(taskID, text string) tea.Cmd {
	return func() tea.Msg {
		return mutationResultMsg{err: m.svc.AddItem(context.Background(), taskID, text)}
	}
}

func (m Model) removeItem(taskID, itemID string) tea.Cmd {
	return func() tea.Msg {
		return mutationResultMsg{err: m.svc.RemoveItem(context.Background(), taskID, itemID)}
	}
}
