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

// Local message types for the board view.
type boardLoadedMsg struct{ err error }
type taskCreatedMsg struct {
	task model.Task
	err  error
}
type taskUpdatedMsg struct {
	task model.Task
	err  error
}
type taskDeletedMsg struct {
	title string
	err   error
}

// BoardMode represents the current input mode.
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeAddTitle
	BoardModeAddDescription
	BoardModeConfirmDelete
)

// BoardColumn indexes the three status columns.
type BoardColumn int

const (
	ColumnTodo BoardColumn = iota
	ColumnWip
	ColumnDone
)

// BoardView renders the shared task list as a three-column kanban board
// and dispatches mutations to the board controller.
type BoardView struct {
	board  *board.Controller
	width  int
	height int

	// Navigation state
	currentColumn BoardColumn
	cursorRow     int
	columnScroll  [3]int

	// Input mode
	mode      BoardMode
	textInput textinput.Model

	// Pending new task title while the description is typed
	pendingTitle string

	// For delete confirmation
	deleteTask *model.Task

	// Assignment selector
	selectingAssignee bool
	selectorCursor    int
	candidates        []model.User

	loading   bool
	statusMsg string
	errMsg    string
}

// NewBoardView creates a new board view.
func NewBoardView(controller *board.Controller) BoardView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	return BoardView{
		board:     controller,
		textInput: ti,
	}
}

// Init triggers the initial load.
func (v BoardView) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

// SetSize sets the view dimensions.
func (v BoardView) SetSize(width, height int) BoardView {
	v.width = width
	v.height = height
	return v
}

// load fetches tasks and roster through the controller.
func (v BoardView) load() tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		return boardLoadedMsg{err: ctl.Load(context.Background())}
	}
}

// Update handles messages.
func (v BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
		}
		v.clampCursor()
		return v, nil

	case taskCreatedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
			v.statusMsg = fmt.Sprintf("Created: %s", msg.task.Title)
		}
		v.clampCursor()
		return v, nil

	case taskUpdatedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
			v.statusMsg = fmt.Sprintf("%s → %s", msg.task.Title, msg.task.Status)
		}
		v.clampCursor()
		return v, nil

	case taskDeletedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
		} else {
			v.errMsg = ""
			v.statusMsg = fmt.Sprintf("Deleted: %s", msg.title)
		}
		v.clampCursor()
		return v, nil

	case tea.KeyMsg:
		v.statusMsg = ""
		switch v.mode {
		case BoardModeAddTitle:
			return v.handleAddTitleMode(msg)
		case BoardModeAddDescription:
			return v.handleAddDescriptionMode(msg)
		case BoardModeConfirmDelete:
			return v.handleConfirmDeleteMode(msg)
		default:
			if v.selectingAssignee {
				return v.handleAssigneeSelector(msg)
			}
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == BoardModeAddTitle || v.mode == BoardModeAddDescription {
		var cmd tea.Cmd
		v.textInput, cmd = v.textInput.Update(msg)
		return v, cmd
	}

	return v, nil
}

// handleNormalMode handles keys in normal mode.
func (v BoardView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	// Column navigation
	case "h", "left":
		if v.currentColumn > 0 {
			v.currentColumn--
			v.clampCursor()
		}
		return v, nil

	case "l", "right":
		if v.currentColumn < ColumnDone {
			v.currentColumn++
			v.clampCursor()
		}
		return v, nil

	// Row navigation
	case "j", "down":
		col := v.column(v.currentColumn)
		if v.cursorRow < len(col)-1 {
			v.cursorRow++
			v.ensureCursorVisible()
		}
		return v, nil

	case "k", "up":
		if v.cursorRow > 0 {
			v.cursorRow--
			v.ensureCursorVisible()
		}
		return v, nil

	case "g":
		v.cursorRow = 0
		v.columnScroll[v.currentColumn] = 0
		return v, nil

	case "G":
		col := v.column(v.currentColumn)
		if len(col) > 0 {
			v.cursorRow = len(col) - 1
			v.ensureCursorVisible()
		}
		return v, nil

	// Add task
	case "a":
		v.mode = BoardModeAddTitle
		v.textInput.SetValue("")
		v.textInput.Placeholder = "New task title..."
		v.textInput.Focus()
		return v, nil

	// Advance status (cyclic)
	case "enter", "tab":
		if task, ok := v.currentTask(); ok {
			return v, v.advanceStatus(task)
		}
		return v, nil

	// Delete task
	case "d":
		if task, ok := v.currentTask(); ok {
			t := task
			v.deleteTask = &t
			v.mode = BoardModeConfirmDelete
		}
		return v, nil

	// Assign user
	case "u":
		if _, ok := v.currentTask(); ok {
			v.candidates = v.board.AssignCandidates()
			if len(v.candidates) == 0 {
				v.statusMsg = "No assignable users"
				return v, nil
			}
			v.selectingAssignee = true
			v.selectorCursor = 0
		}
		return v, nil

	// Reload
	case "r":
		v.loading = true
		return v, v.load()
	}

	return v, nil
}

// handleAddTitleMode handles keys while the title is typed.
func (v BoardView) handleAddTitleMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(v.textInput.Value())
		if title == "" {
			// Empty titles are rejected locally; stay in the input.
			v.errMsg = board.ErrEmptyTitle.Error()
			return v, nil
		}
		v.errMsg = ""
		v.pendingTitle = title
		v.mode = BoardModeAddDescription
		v.textInput.SetValue("")
		v.textInput.Placeholder = "Optional description..."
		return v, nil
	case "esc":
		v.mode = BoardModeNormal
		v.textInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// handleAddDescriptionMode handles keys while the description is typed.
func (v BoardView) handleAddDescriptionMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := v.pendingTitle
		description := strings.TrimSpace(v.textInput.Value())
		v.mode = BoardModeNormal
		v.pendingTitle = ""
		v.textInput.Blur()
		return v, v.createTask(title, description)
	case "esc":
		v.mode = BoardModeNormal
		v.pendingTitle = ""
		v.textInput.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.textInput, cmd = v.textInput.Update(msg)
	return v, cmd
}

// handleConfirmDeleteMode handles the delete confirmation.
func (v BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = BoardModeNormal
		task := v.deleteTask
		v.deleteTask = nil
		if task != nil {
			return v, v.removeTask(*task)
		}
		return v, nil
	case "n", "N", "esc":
		v.mode = BoardModeNormal
		v.deleteTask = nil
		return v, nil
	}
	return v, nil
}

// handleAssigneeSelector handles the assignment candidate picker.
func (v BoardView) handleAssigneeSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if v.selectorCursor < len(v.candidates)-1 {
			v.selectorCursor++
		}
	case "k", "up":
		if v.selectorCursor > 0 {
			v.selectorCursor--
		}
	case "enter":
		if v.selectorCursor < len(v.candidates) {
			user := v.candidates[v.selectorCursor]
			v.selectingAssignee = false
			if task, ok := v.currentTask(); ok {
				return v, v.assignUser(task, user.ID)
			}
		}
	case "esc":
		v.selectingAssignee = false
	}
	return v, nil
}

// column returns the tasks in the given column, freshly derived from the
// controller's cache.
func (v BoardView) column(col BoardColumn) []model.Task {
	buckets := v.board.GroupByStatus()
	switch col {
	case ColumnTodo:
		return buckets.Todo
	case ColumnWip:
		return buckets.Wip
	default:
		return buckets.Done
	}
}

// currentTask returns the task under the cursor.
func (v BoardView) currentTask() (model.Task, bool) {
	col := v.column(v.currentColumn)
	if len(col) == 0 || v.cursorRow >= len(col) {
		return model.Task{}, false
	}
	return col[v.cursorRow], true
}

// clampCursor ensures the cursor is valid for the current column.
func (v *BoardView) clampCursor() {
	col := v.column(v.currentColumn)
	if v.cursorRow >= len(col) {
		if len(col) > 0 {
			v.cursorRow = len(col) - 1
		} else {
			v.cursorRow = 0
		}
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep the cursor in view.
func (v *BoardView) ensureCursorVisible() {
	visibleItems := v.visibleItemCount()
	col := int(v.currentColumn)

	if v.cursorRow >= v.columnScroll[col]+visibleItems {
		v.columnScroll[col] = v.cursorRow - visibleItems + 1
	}
	if v.cursorRow < v.columnScroll[col] {
		v.columnScroll[col] = v.cursorRow
	}
}

// visibleItemCount returns how many cards fit in a column. Cards take two
// lines (title and meta).
func (v *BoardView) visibleItemCount() int {
	availableHeight := (v.height - 7) / 2
	if availableHeight < 1 {
		return 1
	}
	return availableHeight
}

// createTask dispatches a task creation to the controller.
func (v BoardView) createTask(title, description string) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		task, err := ctl.CreateTask(context.Background(), title, description)
		return taskCreatedMsg{task: task, err: err}
	}
}

// advanceStatus dispatches the cyclic status advance.
func (v BoardView) advanceStatus(task model.Task) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		updated, err := ctl.AdvanceStatus(context.Background(), task)
		return taskUpdatedMsg{task: updated, err: err}
	}
}

// removeTask dispatches a delete.
func (v BoardView) removeTask(task model.Task) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		err := ctl.DeleteTask(context.Background(), task)
		return taskDeletedMsg{title: task.Title, err: err}
	}
}

// assignUser dispatches a replace-with-one assignment.
func (v BoardView) assignUser(task model.Task, userID string) tea.Cmd {
	ctl := v.board
	return func() tea.Msg {
		updated, err := ctl.AssignUser(context.Background(), task, userID)
		return taskUpdatedMsg{task: updated, err: err}
	}
}

// View renders the board.
func (v BoardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}
	if v.loading && !v.board.Loaded() {
		return theme.Current.Styles.Subtitle.Render("Loading board...")
	}

	t := theme.Current.Theme

	columnNames := []string{"Todo", "In Progress", "Done"}
	columnColors := []lipgloss.Color{t.StatusTodo, t.StatusWip, t.StatusDone}

	colWidth := (v.width - 4) / 3
	if colWidth < 25 {
		colWidth = 25
	}

	headerStyle := func(i int, active bool) lipgloss.Style {
		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(columnColors[i]).
			Width(colWidth).
			Align(lipgloss.Center)
		if active {
			s = s.Background(t.Highlight)
		}
		return s
	}

	columnStyle := lipgloss.NewStyle().
		Width(colWidth).
		Height(v.height - 3).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)

	var headers []string
	for i := 0; i < 3; i++ {
		tasks := v.column(BoardColumn(i))
		header := fmt.Sprintf("%s (%d)", columnNames[i], len(tasks))
		headers = append(headers, headerStyle(i, i == int(v.currentColumn)).Render(header))
	}
	headerRow := lipgloss.JoinHorizontal(lipgloss.Top, headers...)

	visibleItems := v.visibleItemCount()
	var cols []string
	for i := 0; i < 3; i++ {
		tasks := v.column(BoardColumn(i))
		isActiveCol := i == int(v.currentColumn)
		scrollOffset := v.columnScroll[i]

		startIdx := scrollOffset
		endIdx := scrollOffset + visibleItems
		if startIdx > len(tasks) {
			startIdx = len(tasks)
		}
		if endIdx > len(tasks) {
			endIdx = len(tasks)
		}

		var items []string
		if scrollOffset > 0 {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Width(colWidth-4).
				Align(lipgloss.Center).
				Render(fmt.Sprintf("↑ %d more", scrollOffset)))
		}

		for j := startIdx; j < endIdx; j++ {
			items = append(items, v.renderCard(tasks[j], colWidth, isActiveCol && j == v.cursorRow))
		}

		if endIdx < len(tasks) {
			items = append(items, lipgloss.NewStyle().
				Foreground(t.Subtle).
				Width(colWidth-4).
				Align(lipgloss.Center).
				Render(fmt.Sprintf("↓ %d more", len(tasks)-endIdx)))
		}

		content := strings.Join(items, "\n")
		if len(tasks) == 0 {
			content = lipgloss.NewStyle().
				Foreground(t.Subtle).
				Italic(true).
				Render("(empty)")
		}

		cs := columnStyle
		if isActiveCol {
			cs = cs.BorderForeground(t.Primary)
		}
		cols = append(cols, cs.Render(content))
	}
	columnsRow := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	footer := v.renderFooter(colWidth)

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, columnsRow, footer)
}

// renderCard renders a two-line task card: title, then assignees.
func (v BoardView) renderCard(task model.Task, colWidth int, selected bool) string {
	t := theme.Current.Theme

	cardStyle := lipgloss.NewStyle().
		Width(colWidth - 4).
		Padding(0, 1).
		Foreground(t.Foreground)
	if selected {
		cardStyle = cardStyle.Background(t.Highlight)
	}

	title := task.Title
	maxTitleLen := colWidth - 6
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	meta := "unassigned"
	if len(task.Assignees) > 0 {
		var emails []string
		for _, a := range task.Assignees {
			emails = append(emails, a.Email)
		}
		meta = strings.Join(emails, ", ")
	}
	if len(meta) > maxTitleLen {
		meta = meta[:maxTitleLen-3] + "..."
	}
	metaStyle := lipgloss.NewStyle().Foreground(t.Subtle)
	if selected {
		metaStyle = metaStyle.Background(t.Highlight)
	}

	return cardStyle.Render(title) + "\n" + cardStyle.Render(metaStyle.Render(meta))
}

// renderFooter renders the mode-dependent footer line.
func (v BoardView) renderFooter(colWidth int) string {
	t := theme.Current.Theme

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Width(v.width - 4)

	switch v.mode {
	case BoardModeAddTitle:
		return inputStyle.Render("Title: " + v.textInput.View())
	case BoardModeAddDescription:
		return inputStyle.Render("Description: " + v.textInput.View())
	case BoardModeConfirmDelete:
		name := ""
		if v.deleteTask != nil {
			name = v.deleteTask.Title
		}
		return lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true).
			Render(fmt.Sprintf("Delete '%s'? (y/n)", name))
	}

	if v.selectingAssignee {
		return v.renderAssigneeSelector()
	}

	if v.errMsg != "" {
		return lipgloss.NewStyle().Foreground(t.Error).Render(v.errMsg)
	}
	if v.statusMsg != "" {
		return lipgloss.NewStyle().Foreground(t.Info).Render(v.statusMsg)
	}

	hints := "h/l: column • j/k: nav • enter: advance • a: add • u: assign • d: del • r: reload"
	return lipgloss.NewStyle().Foreground(t.Subtle).Render(hints)
}

// renderAssigneeSelector renders the assignment candidate popup.
func (v BoardView) renderAssigneeSelector() string {
	t := theme.Current.Theme

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Assign to:"))

	for i, u := range v.candidates {
		style := lipgloss.NewStyle()
		if i == v.selectorCursor {
			style = style.Background(t.Highlight).Foreground(t.Foreground)
		}
		lines = append(lines, style.Render(" "+u.Email))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).Render("j/k: navigate • enter: assign • esc: cancel"))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// IsInputMode returns whether the view is in input mode.
func (v BoardView) IsInputMode() bool {
	return v.mode == BoardModeAddTitle ||
		v.mode == BoardModeAddDescription ||
		v.mode == BoardModeConfirmDelete ||
		v.selectingAssignee
}
