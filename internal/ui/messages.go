package ui

// View represents the current active view.
type View int

const (
	ViewAuth View = iota
	ViewBoard
	ViewAdmin
)

// String returns the display name for a view.
func (v View) String() string {
	switch v {
	case ViewAuth:
		return "Sign in"
	case ViewBoard:
		return "Board"
	case ViewAdmin:
		return "Users"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// ErrorMsg contains an error to display in the footer.
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display in the footer.
type StatusMsg struct {
	Message string
}

// ThemeChangedMsg indicates the theme was changed.
type ThemeChangedMsg struct {
	ThemeName string
}
