package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nholt/taskdeck/internal/board"
	"github.com/nholt/taskdeck/internal/model"
	"github.com/nholt/taskdeck/internal/ui/theme"
)

// Local message types for the admin view.
type userSavedMsg struct {
	user model.User
	err  error
}
type userRemovedMsg struct {
	email string
	err   error
}

// AdminMode represents the current input mode.
type AdminMode int

const (
	AdminModeNormal AdminMode = iota
	AdminModeAddEmail
	AdminModeAddRole
	AdminModeConfirmRemove
)

// AdminView manages user accounts. The root model only shows it to admins;
// the server enforces authorization regardless.
type AdminView struct {
	board  *board.Controller
	width  int
	height int

	cursor int
	scroll int

	mode      AdminMode
	textInput textinput.Model

	// Pending add-user state
	pendingEmail string
	pendingRole  model.Role

	removeUser *model.User

	statusMsg string
	errMsg    string
}

// NewAdminView creates a new admin view.
func NewAdminView(controller *board.Controller) AdminView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128

	return AdminView{
		board:     controller,
		textInput: ti,
	}
}

// Init reloads the roster so the table is fresh when the view opens.
func (v AdminView) Init() tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		return boardLoadedMsg{err: ctl.Load(context.Background())}
	}
}

// SetSize sets the view dimensions.
func (v AdminView) SetSize(width, height int) AdminView {
	v.width = width
	v.height = height
	return v
}

// Update handles messages.
func (v AdminView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
		}
		v.clampCursor()
		return v, nil

	case userSavedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
			v.statusMsg = fmt.Sprintf("Saved: %s", msg.user.Email)
		}
		v.clampCursor()
		return v, nil

	case userRemovedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
			v.statusMsg = fmt.Sprintf("Removed: %s", msg.email)
		}
		v.clampCursor()
		return v, nil

	case tea.KeyMsg:
		v.statusMsg = ""
		switch v.mode {
		case AdminModeAddEmail:
			return v.handleAddEmailMode(msg)
		case AdminModeAddRole:
			return v.handleAddRoleMode(msg)
		case AdminModeConfirmRemove:
			return v.handleConfirmRemoveMode(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == AdminModeAddEmail {
		var cmd tea.Cmd
		v.textInput, cmd = v.textInput.Update(msg)
		return v, cmd
	}

	return v, nil
}

// handleNormalMode handles keys in normal mode.
func (v AdminView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	roster := v.board.Roster()

	switch msg.String() {
	case "j", "down":
		if v.cursor < len(roster)-1 {
			v.cursor++
			v.ensureCursorVisible()
		}
		return v, nil

	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
			v.ensureCursorVisible()
		}
		return v, nil

	case "g":
		v.cursor = 0
		v.scroll = 0
		return v, nil

	case "G":
		if len(roster) > 0 {
			v.cursor = len(roster) - 1
			v.ensureCursorVisible()
		}
		return v, nil

	// Add user
	case "a":
		v.mode = AdminModeAddEmail
		v.textInput.SetValue("")
		v.textInput.Placeholder = "email"
		v.textInput.Focus()
		return v, nil

	// Remove user
	case "d":
		if v.cursor < len(roster) {
			user := roster[v.cursor]
			v.removeUser = &user
			v.mode = AdminModeConfirmRemove
		}
		return v, nil

	// Toggle active flag
	case "t":
		if v.cursor < len(roster) {
			return v, v.setActive(roster[v.cursor])
		}
		return v, nil

	// Reload
	case "r":
		return v, v.Init()
	}

	return v, nil
}

// handleAddEmailMode handles keys while the new user's email is typed.
func (v AdminView) handleAddEmailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		email := strings.TrimSpace(v.textInput.Value())
		if email == "" {
			v.errMsg = "email must not be empty"
			return v, nil
		}
		v.errMsg = ""
		v.pendingEmail = email
		v.pendingRole = model.RoleUser
		v.mode = AdminModeAddRole
		v.textInput.Blur()
		return v, nil
	case "esc":
		v.mode = AdminModeNormal
		v.textInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// handleAddRoleMode handles the role picker for a new user.
func (v AdminView) handleAddRoleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "k", "down", "up", "tab":
		if v.pendingRole == model.RoleUser {
			v.pendingRole = model.RoleAdmin
		} else {
			v.pendingRole = model.RoleUser
		}
		return v, nil
	case "enter":
		email := v.pendingEmail
		role := v.pendingRole
		v.mode = AdminModeNormal
		v.pendingEmail = ""
		return v, v.addUser(email, role)
	case "esc":
		v.mode = AdminModeNormal
		v.pendingEmail = ""
		return v, nil
	}
	return v, nil
}

// handleConfirmRemoveMode handles the removal confirmation.
func (v AdminView) handleConfirmRemoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = AdminModeNormal
		user := v.removeUser
		v.removeUser = nil
		if user != nil {
			return v, v.remove(*user)
		}
		return v, nil
	case "n", "N", "esc":
		v.mode = AdminModeNormal
		v.removeUser = nil
		return v, nil
	}
	return v, nil
}

// addUser dispatches an account creation.
func (v AdminView) addUser(email string, role model.Role) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		user, err := ctl.AddUser(context.Background(), email, role)
		return userSavedMsg{user: user, err: err}
	}
}

// remove dispatches an account removal.
func (v AdminView) remove(user model.User) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		err := ctl.RemoveUser(context.Background(), user.ID)
		return userRemovedMsg{email: user.Email, err: err}
	}
}

// setActive dispatches an active-flag toggle.
func (v AdminView) setActive(user model.User) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		updated, err := ctl.SetUserActive(context.Background(), user.ID, !user.Active)
		return userSavedMsg{user: updated, err: err}
	}
}

// clampCursor ensures the cursor is valid for the roster.
func (v *AdminView) clampCursor() {
	roster := v.board.Roster()
	if v.cursor >= len(roster) {
		if len(roster) > 0 {
			v.cursor = len(roster) - 1
		} else {
			v.cursor = 0
		}
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep the cursor in view.
func (v *AdminView) ensureCursorVisible() {
	visible := v.visibleRowCount()
	if v.cursor >= v.scroll+visible {
		v.scroll = v.cursor - visible + 1
	}
	if v.cursor < v.scroll {
		v.scroll = v.cursor
	}
}

// visibleRowCount returns how many roster rows fit.
func (v *AdminView) visibleRowCount() int {
	available := v.height - 6
	if available < 1 {
		return 1
	}
	return available
}

// View renders the roster table.
func (v AdminView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles
	roster := v.board.Roster()

	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Users (%d)", len(roster))))
	b.WriteString("\n")

	if len(roster) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Subtle).Italic(true).Render("(no users visible)"))
		b.WriteString("\n")
	}

	visible := v.visibleRowCount()
	endIdx := v.scroll + visible
	if endIdx > len(roster) {
		endIdx = len(roster)
	}

	for i := v.scroll; i < endIdx; i++ {
		u := roster[i]

		state := lipgloss.NewStyle().Foreground(t.Success).Render("active")
		if !u.Active {
			state = lipgloss.NewStyle().Foreground(t.Error).Render("inactive")
		}
		roleStr := string(u.Role)
		if u.Role == model.RoleAdmin {
			roleStr = lipgloss.NewStyle().Foreground(t.Warning).Render(roleStr)
		}

		row := fmt.Sprintf(" %-36s %-8s %s", u.Email, roleStr, state)
		style := lipgloss.NewStyle()
		if i == v.cursor {
			style = style.Background(t.Highlight)
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	if endIdx < len(roster) {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Subtle).Render(fmt.Sprintf("↓ %d more", len(roster)-endIdx)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())

	return b.String()
}

// renderFooter renders the mode-dependent footer line.
func (v AdminView) renderFooter() string {
	t := theme.Current.Theme

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(v.width - 4)

	switch v.mode {
	case AdminModeAddEmail:
		return inputStyle.Render("Email: " + v.textInput.View())
	case AdminModeAddRole:
		sel := func(role model.Role) string {
			label := string(role)
			if v.pendingRole == role {
				return lipgloss.NewStyle().Background(t.Highlight).Render(" " + label + " ")
			}
			return " " + label + " "
		}
		return inputStyle.Render("Role: " + sel(model.RoleUser) + sel(model.RoleAdmin) + "  (tab: switch, enter: create)")
	case AdminModeConfirmRemove:
		email := ""
		if v.removeUser != nil {
			email = v.removeUser.Email
		}
		return lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true).
			Render(fmt.Sprintf("Remove '%s'? (y/n)", email))
	}

	if v.errMsg != "" {
		return lipgloss.NewStyle().Foreground(t.Error).Render(v.errMsg)
	}
	if v.statusMsg != "" {
		return lipgloss.NewStyle().Foreground(t.Info).Render(v.statusMsg)
	}

	hints := "j/k: nav • a: add • t: toggle active • d: remove • r: reload"
	return lipgloss.NewStyle().Foreground(t.Subtle).Render(hints)
}

// IsInputMode returns whether the view is in input mode.
func (v AdminView) IsInputMode() bool {
	return v.mode != AdminModeNormal
}
