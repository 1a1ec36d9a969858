package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nholt/taskdeck/internal/app"
	"github.com/nholt/taskdeck/internal/model"
	"github.com/nholt/taskdeck/internal/ui/theme"
	"github.com/nholt/taskdeck/internal/ui/views"
)

// RootModel is the main application model that manages views. It gates the
// board behind an active session and the user admin view behind the admin
// role; the server still enforces authorization on every request.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	authView    views.AuthView
	boardView   views.BoardView
	adminView   views.AdminView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. The session has already been
// restored by app.New, so the starting view reflects it.
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	start := ViewAuth
	if application.Session.Active() {
		start = ViewBoard
	}

	return RootModel{
		app:         application,
		keys:        DefaultKeyMap(),
		help:        h,
		currentView: start,
		authView:    views.NewAuthView(application.Session),
		boardView:   views.NewBoardView(application.Board),
		adminView:   views.NewAdminView(application.Board),
	}
}

// Init initializes the model.
func (m RootModel) Init() tea.Cmd {
	if m.currentView == ViewBoard {
		return m.boardView.Init()
	}
	return m.authView.Init()
}

// Update handles messages.
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header and footer
		contentHeight := m.height - 4
		m.authView = m.authView.SetSize(m.width, contentHeight)
		m.boardView = m.boardView.SetSize(m.width, contentHeight)
		m.adminView = m.adminView.SetSize(m.width, contentHeight)

	case views.SessionEstablishedMsg:
		m.currentView = ViewBoard
		return m, m.boardView.Init()

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := false
		switch m.currentView {
		case ViewAuth:
			isInputMode = m.authView.IsInputMode()
		case ViewBoard:
			isInputMode = m.boardView.IsInputMode()
		case ViewAdmin:
			isInputMode = m.adminView.IsInputMode()
		}

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil

		case key.Matches(msg, m.keys.Logout):
			if m.currentView != ViewAuth {
				m.app.Session.Logout()
				m.currentView = ViewAuth
				m.authView = views.NewAuthView(m.app.Session)
				m.authView = m.authView.SetSize(m.width, m.height-4)
				return m, m.authView.Init()
			}
		}

		// Skip other global keys when in input mode
		if isInputMode {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		case key.Matches(msg, m.keys.BoardView):
			if m.app.Session.Active() {
				m.currentView = ViewBoard
				return m, m.boardView.Init()
			}

		case key.Matches(msg, m.keys.AdminView):
			// Role gating is a UI concern; the session store only answers
			// the role predicate.
			if m.app.Session.HasRole(model.RoleAdmin) {
				m.currentView = ViewAdmin
				return m, m.adminView.Init()
			}
			m.errorMsg = "admin role required"
			return m, nil
		}

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	// Delegate to current view
	switch m.currentView {
	case ViewAuth:
		newAuthView, cmd := m.authView.Update(msg)
		m.authView = newAuthView.(views.AuthView)
		cmds = append(cmds, cmd)
	case ViewBoard:
		newBoardView, cmd := m.boardView.Update(msg)
		m.boardView = newBoardView.(views.BoardView)
		cmds = append(cmds, cmd)
	case ViewAdmin:
		newAdminView, cmd := m.adminView.Update(msg)
		m.adminView = newAdminView.(views.AdminView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewAuth:
			content = m.authView.View()
		case ViewBoard:
			content = m.boardView.View()
		case ViewAdmin:
			content = m.adminView.View()
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar.
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("taskdeck")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	var account string
	if user := m.app.Session.User(); user != nil {
		label := user.Email
		if user.Role == model.RoleAdmin {
			label += " (admin)"
		}
		account = viewStyle.Render(label)
	}

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(account)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + account
}

// renderFooter renders the footer/status bar.
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1 string
	switch m.currentView {
	case ViewAuth:
		line1 = key("enter", "submit") + sep +
			key("ctrl+r", "login/register") + sep +
			key("ctrl+c", "quit")
	case ViewBoard:
		line1 = key("1/2", "views") + sep +
			key("C-l", "logout") + sep +
			key("C-t", "theme") + sep +
			key("?", "help")
	case ViewAdmin:
		line1 = key("1", "board") + sep +
			key("C-l", "logout") + sep +
			key("?", "help")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay.
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder

	b.WriteString(titleStyle.Render("Taskdeck Help"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Board"))
	b.WriteString("\n")
	boardKeys := [][]string{
		{"h/l j/k", "Navigate columns and cards"},
		{"enter", "Advance status (todo → wip → done → todo)"},
		{"a", "Add task (title, then description)"},
		{"u", "Assign a user"},
		{"d", "Delete (with confirm)"},
		{"r", "Reload from server"},
	}
	for _, kv := range boardKeys {
		b.WriteString(keyStyle.Render(kv[0]))
		b.WriteString(descStyle.Render(kv[1]))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Users (admin)"))
	b.WriteString("\n")
	adminKeys := [][]string{
		{"a", "Add user account"},
		{"t", "Toggle active flag"},
		{"d", "Remove account (with confirm)"},
	}
	for _, kv := range adminKeys {
		b.WriteString(keyStyle.Render(kv[0]))
		b.WriteString(descStyle.Render(kv[1]))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("System"))
	b.WriteString("\n")
	sysKeys := [][]string{
		{"1 / 2", "Switch views (board, users)"},
		{"ctrl+l", "Logout"},
		{"ctrl+t", "Cycle theme"},
		{"q / ctrl+c", "Quit"},
	}
	for _, kv := range sysKeys {
		b.WriteString(keyStyle.Render(kv[0]))
		b.WriteString(descStyle.Render(kv[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? to close"))

	return b.String()
}

// cycleTheme cycles through available themes.
func (m *RootModel) cycleTheme() {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return
		}
	}
}
