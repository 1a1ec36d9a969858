package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nholt/taskdeck/internal/session"
	"github.com/nholt/taskdeck/internal/ui/theme"
)

// SessionEstablishedMsg is sent to the root model when login or register
// succeeds, so it can switch to the board.
type SessionEstablishedMsg struct{}

type authResultMsg struct{ err error }

// AuthMode selects between the login and register forms.
type AuthMode int

const (
	AuthModeLogin AuthMode = iota
	AuthModeRegister
)

const (
	fieldEmail = iota
	fieldPassword
)

// AuthView is the email/password form shown when no session exists.
type AuthView struct {
	session *session.Store
	width   int
	height  int

	mode   AuthMode
	inputs [2]textinput.Model
	focus  int

	busy   bool
	errMsg string
}

// NewAuthView creates the auth view.
func NewAuthView(sess *session.Store) AuthView {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return AuthView{
		session: sess,
		inputs:  [2]textinput.Model{email, password},
	}
}

// Init initializes the auth view.
func (v AuthView) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize sets the view dimensions.
func (v AuthView) SetSize(width, height int) AuthView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode reports whether the view is capturing text input. The auth
// form always is.
func (v AuthView) IsInputMode() bool {
	return true
}

// Update handles messages.
func (v AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		v.errMsg = ""
		v.inputs[fieldPassword].SetValue("")
		return v, func() tea.Msg { return SessionEstablishedMsg{} }

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			v.focus = (v.focus + 1) % len(v.inputs)
			for i := range v.inputs {
				if i == v.focus {
					v.inputs[i].Focus()
				} else {
					v.inputs[i].Blur()
				}
			}
			return v, nil

		case "ctrl+r":
			if v.mode == AuthModeLogin {
				v.mode = AuthModeRegister
			} else {
				v.mode = AuthModeLogin
			}
			v.errMsg = ""
			return v, nil

		case "enter":
			return v.submit()
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return v, cmd
}

func (v AuthView) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(v.inputs[fieldEmail].Value())
	password := v.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		v.errMsg = "email and password are required"
		return v, nil
	}

	v.busy = true
	v.errMsg = ""
	mode := v.mode
	sess := v.session
	return v, func() tea.Msg {
		var err error
		if mode == AuthModeRegister {
			err = sess.Register(context.Background(), email, password)
		} else {
			err = sess.Login(context.Background(), email, password)
		}
		return authResultMsg{err: err}
	}
}

// View renders the auth form.
func (v AuthView) View() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	title := "Sign in"
	action := "sign in"
	toggleHint := "ctrl+r: register instead"
	if v.mode == AuthModeRegister {
		title = "Create account"
		action = "register"
		toggleHint = "ctrl+r: sign in instead"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")

	labels := []string{"Email", "Password"}
	for i, input := range v.inputs {
		b.WriteString(styles.Label.Render(labels[i]))
		b.WriteString("\n")
		box := styles.Input
		if i == v.focus {
			box = styles.InputFocused
		}
		b.WriteString(box.Width(34).Render(input.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.busy {
		b.WriteString(styles.Subtitle.Render("Signing in..."))
	} else if v.errMsg != "" {
		b.WriteString(styles.ErrorText.Render(v.errMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.HelpDesc.Render(
		fmt.Sprintf("enter: %s • tab: next field • %s", action, toggleHint)))

	panel := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Render(b.String())

	if v.width > 0 && v.height > 0 {
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, panel)
	}
	return panel
}
