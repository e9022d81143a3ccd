package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imshahrukh/sitetracker/internal/keys"
	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/progress"
	"github.com/imshahrukh/sitetracker/internal/store"
	"github.com/imshahrukh/sitetracker/internal/tasks"
	"github.com/imshahrukh/sitetracker/internal/theme"
	"github.com/imshahrukh/sitetracker/internal/ui"
	"github.com/imshahrukh/sitetracker/internal/ui/detail"
	"github.com/imshahrukh/sitetracker/internal/ui/login"
	"github.com/imshahrukh/sitetracker/internal/ui/planview"
	"github.com/imshahrukh/sitetracker/internal/ui/taskform"
	"github.com/imshahrukh/sitetracker/internal/ui/tasklist"
	"github.com/imshahrukh/sitetracker/internal/view"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewList
	ViewPlan
	ViewDetail
	ViewForm
)

// viewChangedMsg is sent whenever the view store has new state.
type viewChangedMsg struct{}

// loggedInMsg carries the result of a login attempt.
type loggedInMsg struct {
	user model.User
	err  error
}

// Model is the root Bubble Tea model that manages view routing, layout,
// the session, and access to the data layer.
type Model struct {
	currentView ViewState
	layout      ui.Layout

	store store.Store
	svc   *tasks.Service
	tasks *view.Store
	keys  *keys.KeyMap

	user *model.User

	loginView  login.Model
	listView   tasklist.Model
	planView   planview.Model
	detailView detail.Model
	formView   taskform.Model

	statusMsg string
	ready     bool
}

// New creates the root application model wired to the given data layer.
func New(st store.Store, svc *tasks.Service, vs *view.Store, cfg *model.AppConfig) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewLogin,
		store:       st,
		svc:         svc,
		tasks:       vs,
		keys:        k,
		loginView:   login.New(80, 24),
		listView: tasklist.New(k,
			progress.FilterKey(cfg.Display.Filter),
			progress.SortKey(cfg.Display.SortBy),
			80, 24),
		planView:   planview.New(cfg.Plan.Width, cfg.Plan.Height, 80, 24),
		detailView: detail.New(k, 80, 24),
		formView:   taskform.New(80, 24),
	}
}

// Init starts the login prompt and the view-store update listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loginView.Init(), m.waitForViewChange())
}

// waitForViewChange blocks on the view store's coalesced update signal
// and turns it into a Bubble Tea message.
func (m Model) waitForViewChange() tea.Cmd {
	updates := m.tasks.Updates()
	return func() tea.Msg {
		<-updates
		return viewChangedMsg{}
	}
}

// Update routes messages to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case viewChangedMsg:
		m.syncViews()
		return m, m.waitForViewChange()

	case login.SubmitMsg:
		return m, m.loginCmd(msg.Name)

	case loggedInMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("login failed: %v", msg.err)
			return m, nil
		}
		u := msg.user
		m.user = &u
		m.tasks.Bind(m.store, u.ID)
		m.currentView = ViewList
		m.statusMsg = ""
		return m, nil

	case tasklist.OpenDetailMsg:
		m.tasks.Select(msg.TaskID)
		m.detailView.SetTask(m.tasks.Selected())
		m.currentView = ViewDetail
		return m, nil

	case detail.BackMsg:
		m.tasks.Select("")
		m.currentView = ViewList
		return m, nil

	case detail.EditTaskMsg:
		if sel := m.tasks.Selected(); sel != nil {
			m.currentView = ViewForm
			return m, m.formView.StartEdit(*sel)
		}
		return m, nil

	case detail.DeleteTaskMsg:
		m.tasks.RemoveLocal(msg.TaskID)
		m.currentView = ViewList
		return m, m.deleteTask(msg.TaskID)

	case detail.SetItemStatusMsg:
		return m, m.setItemStatus(msg.TaskID, msg.ItemID, msg.Status)

	case detail.AddItemMsg:
		return m, m.addItem(msg.TaskID, msg.Text)

	case detail.RemoveItemMsg:
		return m, m.removeItem(msg.TaskID, msg.ItemID)

	case taskform.CreatedMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Title, msg.Description, msg.Position)

	case taskform.UpdatedMsg:
		// Optimistic patch so the detail view shows the edit before the
		// authoritative snapshot lands.
		m.tasks.PatchLocal(msg.TaskID, store.TaskPatch{
			Title:       &msg.Title,
			Description: &msg.Description,
			Position:    msg.Position,
		})
		m.detailView.SetTask(m.tasks.Selected())
		m.currentView = ViewDetail
		return m, m.updateTask(msg.TaskID, msg.Title, msg.Description, msg.Position)

	case taskform.CancelMsg:
		if m.tasks.Selected() != nil {
			m.currentView = ViewDetail
		} else {
			m.currentView = ViewList
		}
		return m, nil

	case mutationResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("error: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.routeToView(msg)
}

// handleGlobalKey processes keys that apply regardless of (or across)
// views. The third return reports whether the key was consumed.
func (m Model) handleGlobalKey(km tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	// Forms and inputs own the keyboard while active.
	if m.currentView == ViewForm || m.currentView == ViewLogin ||
		(m.currentView == ViewDetail && m.detailView.TextEntryActive()) {
		if km.Type == tea.KeyCtrlC {
			return m, tea.Quit, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(km, m.keys.Logout):
		m.logout()
		return m, nil, true

	case key.Matches(km, m.keys.Retry):
		if m.tasks.Err() != nil {
			m.tasks.Retry()
			return m, nil, true
		}
		return m, nil, false

	case key.Matches(km, m.keys.NewTask):
		if m.currentView == ViewList || m.currentView == ViewPlan {
			m.currentView = ViewForm
			return m, m.formView.StartCreate(), true
		}
		return m, nil, false

	case key.Matches(km, m.keys.Plan):
		switch m.currentView {
		case ViewList:
			m.currentView = ViewPlan
		case ViewPlan:
			m.currentView = ViewList
		}
		return m, nil, true

	case key.Matches(km, m.keys.DeleteTask):
		if m.currentView == ViewList {
			if sel := m.listView.Selected(); sel != nil {
				m.tasks.RemoveLocal(sel.ID)
				return m, m.deleteTask(sel.ID), true
			}
		}
		return m, nil, false
	}

	return m, nil, false
}

// routeToView forwards a message to the active view's Update.
func (m Model) routeToView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewList, ViewPlan:
		m.listView, cmd = m.listView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	}

	return m, cmd
}

// syncViews pushes the latest view-store state into the components.
func (m *Model) syncViews() {
	ts := m.tasks.Tasks()
	m.listView.SetTasks(ts)
	m.planView.SetTasks(ts)
	if m.currentView == ViewDetail {
		m.detailView.SetTask(m.tasks.Selected())
	}
}

// logout tears down the subscription and returns to the login view.
func (m *Model) logout() {
	m.tasks.Release()
	m.user = nil
	m.loginView.Reset()
	m.currentView = ViewLogin
	m.statusMsg = ""
}

// resize propagates new terminal dimensions to every view.
func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.ready = true

	ch := m.layout.ContentHeight()
	m.loginView.SetSize(width, height)
	m.listView.SetSize(width, ch)
	m.planView.SetSize(width, ch)
	m.detailView.SetSize(width, ch)
	m.formView.SetSize(width, ch)
}

// View renders the full frame for the active view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	userName := ""
	if m.user != nil {
		userName = m.user.Name
	}
	header := m.layout.RenderHeader("Site Tracker", userName, m.listView.FilterLabel())

	var content string
	switch {
	case m.tasks.Err() != nil:
		content = m.renderStreamError()
	case m.tasks.Loading():
		content = lipgloss.NewStyle().
			Width(m.layout.ContentWidth()).
			Height(m.layout.ContentHeight()).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading tasks...")
	default:
		switch m.currentView {
		case ViewPlan:
			content = m.planView.View()
		case ViewDetail:
			content = m.detailView.View()
		case ViewForm:
			content = m.formView.View()
		default:
			content = m.listView.View()
		}
	}

	statusBar := m.layout.RenderStatusBar(m.statusHints(), m.statusMsg)

	return m.layout.Frame(header, content, statusBar)
}

// renderStreamError shows the live-query failure with a manual retry
// hint. The subscription is never silently re-opened.
func (m Model) renderStreamError() string {
	msg := theme.ErrorStyle.Render(fmt.Sprintf("task stream failed: %v", m.tasks.Err())) +
		"\n\n" + theme.HelpStyle.Render("r to retry · ctrl+l to log out")
	return lipgloss.NewStyle().
		Width(m.layout.ContentWidth()).
		Height(m.layout.ContentHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
}

// statusHints returns the keyboard hints for the active view.
func (m Model) statusHints() string {
	switch m.currentView {
	case ViewDetail:
		return "space: cycle status · a: add item · x: remove item · e: edit · d: delete · esc: back"
	case ViewPlan:
		return "p: list view · n: new task · f: filter · s: sort · q: quit"
	case ViewForm:
		return "enter: next field · esc: cancel"
	default:
		return "enter: detail · n: new · d: delete · p: plan · f: filter · s: sort · q: quit"
	}
}
