package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// Service is the board surface the terminal UI drives.
type Service interface {
	Load(context.Context) error
	Board() domain.Board
	AddColumn(context.Context, string) (string, error)
	DeleteColumn(context.Context, string) error
	AddTask(context.Context, string, string) (string, error)
	DeleteTask(context.Context, string) error
	CommitColumnEdit(context.Context, string, string) (bool, error)
	CommitTaskEdit(context.Context, string, string) (bool, error)
	DragStart(domain.DragItem) (app.Overlay, bool)
	DragOver(context.Context, domain.DragItem, *domain.DragItem) error
	DragEnd(context.Context, domain.DragItem, *domain.DragItem) error
	CancelDrag()
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeAddColumn
	modeEditTask
	modeRenameColumn
	modeTaskInfo
	modeDragTask
	modeDragColumn
)

// Model is the bubbletea model for the board.
type Model struct {
	svc Service

	columns []domain.Column
	tasks   []domain.Task

	selectedColumn int
	selectedTask   int

	mode       inputMode
	input      textinput.Model
	editID     string
	taskInfoID string

	dragItem   domain.DragItem
	dragTarget int

	pendingFocusTaskID   string
	pendingFocusColumnID string

	help     help.Model
	keys     keyMap
	markdown *markdownRenderer
	copyText func(string) error

	status string
	err    error
	width  int
	height int
	ready  bool
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	board domain.Board
	err   error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err           error
	status        string
	reload        bool
	focusTaskID   string
	focusColumnID string
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:      svc,
		status:   "loading...",
		help:     h,
		keys:     newKeyMap(),
		input:    newModalInput("", "", "", 500),
		markdown: &markdownRenderer{style: "dark"},
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.columns = msg.board.Columns
		m.tasks = msg.board.Tasks
		m.clampSelections()
		if m.pendingFocusColumnID != "" {
			m.focusColumnByID(m.pendingFocusColumnID)
			m.pendingFocusColumnID = ""
		}
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		if m.status == "" || m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			if errors.Is(msg.err, app.ErrPersist) {
				// the in-memory board still changed, so keep rendering it
				m.status = "not saved: " + msg.err.Error()
				return m, m.loadData
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		if msg.focusColumnID != "" {
			m.pendingFocusColumnID = msg.focusColumnID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// loadData reads the current board snapshot.
func (m Model) loadData() tea.Msg {
	return loadedMsg{board: m.svc.Board()}
}

// reloadData re-hydrates the store from its persister before reading.
func (m Model) reloadData() tea.Msg {
	if err := m.svc.Load(context.Background()); err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{board: m.svc.Board()}
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startInput opens a single-line modal input for mode.
func (m *Model) startInput(mode inputMode, prompt, placeholder, value, targetID string) tea.Cmd {
	m.help.ShowAll = false
	m.mode = mode
	m.editID = targetID
	m.input = newModalInput(prompt, placeholder, value, 500)
	m.input.CursorEnd()
	m.status = m.modeLabel()
	return m.input.Focus()
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.reloadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		tasks := m.currentColumnTasks()
		if len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "add a column first"
			return m, nil
		}
		placeholder := domain.DefaultTaskContent(len(m.currentColumnTasks()))
		return m, m.startInput(modeAddTask, "task: ", placeholder, "", column.ID)
	case key.Matches(msg, m.keys.addColumn):
		placeholder := domain.DefaultColumnTitle(len(m.columns))
		return m, m.startInput(modeAddColumn, "column: ", placeholder, "", "")
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startInput(modeEditTask, "edit: ", "empty keeps current content", task.Content, task.ID)
	case key.Matches(msg, m.keys.renameColumn):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m, m.startInput(modeRenameColumn, "title: ", "empty keeps current title", column.Title, column.ID)
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.help.ShowAll = false
		m.mode = modeTaskInfo
		m.taskInfoID = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.runAction("task deleted", "", "", func(ctx context.Context) error {
			return m.svc.DeleteTask(ctx, task.ID)
		})
	case key.Matches(msg, m.keys.deleteColumn):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m, m.runAction(fmt.Sprintf("column %q deleted", truncate(column.Title, 24)), "", "", func(ctx context.Context) error {
			return m.svc.DeleteColumn(ctx, column.ID)
		})
	case key.Matches(msg, m.keys.copyTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.copyTaskCmd(task)
	case key.Matches(msg, m.keys.pickTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m.startDrag(domain.TaskItem(task.ID))
	case key.Matches(msg, m.keys.pickColumn):
		column, ok := m.currentColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m.startDrag(domain.ColumnItem(column.ID))
	default:
		return m, nil
	}
}

func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeTaskInfo:
		return m.handleTaskInfoKey(msg)
	case modeDragTask:
		return m.handleTaskDragKey(msg)
	case modeDragColumn:
		return m.handleColumnDragKey(msg)
	}

	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.editID = ""
		m.input.Blur()
		m.status = "cancelled"
		return m, nil
	case "enter":
		return m.submitInputMode()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInputMode applies the modal input. Edits go through the trim-or-revert policy.
func (m Model) submitInputMode() (tea.Model, tea.Cmd) {
	mode := m.mode
	targetID := m.editID
	raw := m.input.Value()
	placeholder := m.input.Placeholder
	m.mode = modeNone
	m.editID = ""
	m.input.Blur()

	switch mode {
	case modeAddTask:
		content := strings.TrimSpace(raw)
		if content == "" {
			content = placeholder
		}
		svc := m.svc
		return m, func() tea.Msg {
			id, err := svc.AddTask(context.Background(), targetID, content)
			if err != nil {
				return actionMsg{err: err, focusTaskID: id}
			}
			if id == "" {
				return actionMsg{status: "column no longer exists", reload: true}
			}
			return actionMsg{status: "task added", reload: true, focusTaskID: id}
		}
	case modeAddColumn:
		title := strings.TrimSpace(raw)
		if title == "" {
			title = placeholder
		}
		svc := m.svc
		return m, func() tea.Msg {
			id, err := svc.AddColumn(context.Background(), title)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "column added", reload: true, focusColumnID: id}
		}
	case modeEditTask:
		return m, m.commitEdit("task updated", "task unchanged", targetID, "", func(ctx context.Context) (bool, error) {
			return m.svc.CommitTaskEdit(ctx, targetID, raw)
		})
	case modeRenameColumn:
		return m, m.commitEdit("column renamed", "column unchanged", "", targetID, func(ctx context.Context) (bool, error) {
			return m.svc.CommitColumnEdit(ctx, targetID, raw)
		})
	default:
		return m, nil
	}
}

func (m Model) handleTaskInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task, ok := m.taskByID(m.taskInfoID)
	if !ok {
		m.mode = modeNone
		m.taskInfoID = ""
		m.status = "task info unavailable"
		return m, nil
	}
	switch {
	case msg.String() == "esc" || key.Matches(msg, m.keys.taskInfo) || msg.String() == "q":
		m.mode = modeNone
		m.taskInfoID = ""
		m.status = "ready"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		m.taskInfoID = ""
		return m, m.startInput(modeEditTask, "edit: ", "empty keeps current content", task.Content, task.ID)
	case key.Matches(msg, m.keys.copyTask):
		return m, m.copyTaskCmd(task)
	default:
		return m, nil
	}
}

// startDrag picks up item through the controller.
func (m Model) startDrag(item domain.DragItem) (tea.Model, tea.Cmd) {
	overlay, ok := m.svc.DragStart(item)
	if !ok {
		m.status = "nothing to drag"
		return m, nil
	}
	m.help.ShowAll = false
	m.dragItem = item
	switch item.Kind {
	case domain.DragKindTask:
		m.mode = modeDragTask
		m.status = "dragging " + truncate(overlay.Task.Content, 32)
	case domain.DragKindColumn:
		m.mode = modeDragColumn
		m.dragTarget = m.selectedColumn
		m.status = "dragging column " + truncate(overlay.Column.Title, 24)
	}
	return m, nil
}

// handleTaskDragKey fires live DragOver events while a task is picked up.
func (m Model) handleTaskDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	active := m.dragItem
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.svc.CancelDrag()
		m.mode = modeNone
		m.status = "drag cancelled"
		return m, nil
	case key.Matches(msg, m.keys.drop):
		m.mode = modeNone
		return m, m.runAction("task dropped", active.ID, "", func(ctx context.Context) error {
			return m.svc.DragEnd(ctx, active, nil)
		})
	case key.Matches(msg, m.keys.moveLeft), key.Matches(msg, m.keys.moveRight):
		delta := 1
		if key.Matches(msg, m.keys.moveLeft) {
			delta = -1
		}
		target := m.selectedColumn + delta
		if target < 0 || target >= len(m.columns) {
			return m, nil
		}
		over := domain.ColumnItem(m.columns[target].ID)
		return m, m.runAction("", active.ID, "", func(ctx context.Context) error {
			return m.svc.DragOver(ctx, active, &over)
		})
	case key.Matches(msg, m.keys.moveUp), key.Matches(msg, m.keys.moveDown):
		delta := 1
		if key.Matches(msg, m.keys.moveUp) {
			delta = -1
		}
		tasks := m.currentColumnTasks()
		target := m.selectedTask + delta
		if target < 0 || target >= len(tasks) {
			return m, nil
		}
		over := domain.TaskItem(tasks[target].ID)
		return m, m.runAction("", active.ID, "", func(ctx context.Context) error {
			return m.svc.DragOver(ctx, active, &over)
		})
	default:
		return m, nil
	}
}

// handleColumnDragKey moves a drop marker and commits on drop.
func (m Model) handleColumnDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	active := m.dragItem
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.svc.CancelDrag()
		m.mode = modeNone
		m.status = "drag cancelled"
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.dragTarget = clamp(m.dragTarget-1, 0, len(m.columns)-1)
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.dragTarget = clamp(m.dragTarget+1, 0, len(m.columns)-1)
		return m, nil
	case key.Matches(msg, m.keys.drop):
		m.mode = modeNone
		var over *domain.DragItem
		if m.dragTarget >= 0 && m.dragTarget < len(m.columns) {
			item := domain.ColumnItem(m.columns[m.dragTarget].ID)
			over = &item
		}
		return m, m.runAction("column dropped", "", active.ID, func(ctx context.Context) error {
			return m.svc.DragEnd(ctx, active, over)
		})
	default:
		return m, nil
	}
}

// runAction executes fn off the render loop and reloads the board afterwards.
func (m Model) runAction(status, focusTaskID, focusColumnID string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: status, reload: true, focusTaskID: focusTaskID, focusColumnID: focusColumnID}
	}
}

// commitEdit executes an edit-policy call and reports whether it applied.
func (m Model) commitEdit(applied, reverted, focusTaskID, focusColumnID string, fn func(context.Context) (bool, error)) tea.Cmd {
	return func() tea.Msg {
		ok, err := fn(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		status := reverted
		if ok {
			status = applied
		}
		return actionMsg{status: status, reload: true, focusTaskID: focusTaskID, focusColumnID: focusColumnID}
	}
}

func (m Model) copyTaskCmd(task domain.Task) tea.Cmd {
	write := m.copyText
	return func() tea.Msg {
		if err := write(task.Content); err != nil {
			return actionMsg{status: "copy failed: " + err.Error()}
		}
		return actionMsg{status: "copied task to clipboard"}
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes the full screen as a string.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("Kanban Board") + "  " +
		lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf("%d columns · %d tasks", len(m.columns), len(m.tasks)))
	if m.mode != modeNone {
		header += statusStyle.Render("  [" + m.modeLabel() + "]")
	}

	var body string
	if len(m.columns) == 0 {
		body = lipgloss.NewStyle().Foreground(muted).Padding(1, 2).Render("No columns yet. Press c to add one.")
	} else {
		body = m.renderColumns(accent, muted, dim)
	}

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpText := helpBubble.View(m.keys)
	if m.mode == modeDragTask || m.mode == modeDragColumn {
		helpText = helpBubble.View(dragKeyMap{keys: m.keys})
	}
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpText)

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, dim, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

func (m Model) renderColumns(accent, muted, dim color.Color) string {
	colWidth := m.columnWidth()
	colHeight := m.columnHeight()
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	dropColStyle := baseColStyle.BorderForeground(lipgloss.Color("212")).BorderStyle(lipgloss.DoubleBorder())
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	countStyle := lipgloss.NewStyle().Foreground(muted)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)

	views := make([]string, 0, len(m.columns))
	for colIdx, column := range m.columns {
		colTasks := m.tasksForColumn(column.ID)
		title := column.Title
		if m.mode == modeDragColumn && column.ID == m.dragItem.ID {
			title += " (moving)"
		}
		headerLine := colTitle.Render(truncate(title, max(1, colWidth-8))) + " " + countStyle.Render(fmt.Sprintf("%d", len(colTasks)))

		lines := []string{headerLine, ""}
		selectedStart, selectedEnd := -1, -1
		if len(colTasks) == 0 {
			lines = append(lines, emptyStyle.Render("No tasks yet"))
		}
		for taskIdx, task := range colTasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			dragged := m.mode == modeDragTask && task.ID == m.dragItem.ID
			prefix := "   "
			switch {
			case dragged:
				prefix = "▸  "
			case selected:
				prefix = "│  "
			}
			text := firstLine(task.Content)
			if text == "" {
				text = "(empty)"
			}
			row := prefix + truncate(text, max(1, colWidth-8))
			switch {
			case dragged:
				row = draggedTaskStyle.Render(row)
			case selected:
				row = selectedTaskStyle.Render(row)
			}
			rowStart := len(lines)
			lines = append(lines, row)
			if taskIdx < len(colTasks)-1 {
				lines = append(lines, "")
			}
			if selected {
				selectedStart, selectedEnd = rowStart, len(lines)-1
			}
		}

		innerHeight := max(1, colHeight-4)
		if colIdx == m.selectedColumn && selectedEnd >= innerHeight {
			shift := clamp(selectedEnd-innerHeight+1, 0, selectedStart-2)
			lines = append(lines[:2], lines[2+shift:]...)
		}
		content := fitLines(strings.Join(lines, "\n"), innerHeight)

		style := baseColStyle
		switch {
		case m.mode == modeDragColumn && colIdx == m.dragTarget:
			style = dropColStyle
		case colIdx == m.selectedColumn:
			style = selColStyle
		}
		views = append(views, style.Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderModeOverlay renders the modal for input and detail modes.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 40, 90)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeAddTask, modeAddColumn, modeEditTask, modeRenameColumn:
		lines := []string{
			titleStyle.Render(m.modeLabel()),
			"",
			m.input.View(),
			"",
			hintStyle.Render(m.modePrompt()),
		}
		return style.Render(strings.Join(lines, "\n"))
	case modeTaskInfo:
		task, ok := m.taskByID(m.taskInfoID)
		if !ok {
			return ""
		}
		columnTitle := task.ColumnID
		for _, column := range m.columns {
			if column.ID == task.ColumnID {
				columnTitle = column.Title
				break
			}
		}
		body := m.markdown.render(task.Content, width-4)
		if body == "" {
			body = hintStyle.Render("(empty)")
		}
		lines := []string{
			titleStyle.Render("Task"),
			hintStyle.Render("column: " + columnTitle + " • id: " + task.ID),
			"",
			body,
			"",
			hintStyle.Render("e edit • y copy • esc close"),
		}
		content := strings.Join(lines, "\n")
		if m.height > 0 {
			content = fitLines(content, max(6, m.height-6))
		}
		return style.BorderForeground(dim).Render(content)
	default:
		return ""
	}
}

func (m Model) renderHelpOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Kanban Board Help")
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Dragging"),
		"m picks up the selected task; h/l hover a neighbouring column, j/k a neighbouring card",
		"M picks up the selected column; h/l choose where it lands",
		"enter/space drops • esc cancels",
	}
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(muted).Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddTask:
		return "new task"
	case modeAddColumn:
		return "new column"
	case modeEditTask:
		return "edit task"
	case modeRenameColumn:
		return "rename column"
	case modeTaskInfo:
		return "task info"
	case modeDragTask:
		return "drag task"
	case modeDragColumn:
		return "drag column"
	default:
		return "normal"
	}
}

func (m Model) modePrompt() string {
	switch m.mode {
	case modeAddTask, modeAddColumn:
		return "enter add • empty uses the placeholder • esc cancel"
	case modeEditTask, modeRenameColumn:
		return "enter save • empty keeps the current value • esc cancel"
	default:
		return ""
	}
}

func (m *Model) clampSelections() {
	if len(m.columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.columns)-1)
	m.selectedTask = clamp(m.selectedTask, 0, max(0, len(m.currentColumnTasks())-1))
	m.dragTarget = clamp(m.dragTarget, 0, len(m.columns)-1)
}

func (m *Model) focusColumnByID(columnID string) {
	for idx, column := range m.columns {
		if column.ID == columnID {
			m.selectedColumn = idx
			m.selectedTask = 0
			return
		}
	}
}

func (m *Model) focusTaskByID(taskID string) {
	task, ok := m.taskByID(taskID)
	if !ok {
		return
	}
	for colIdx, column := range m.columns {
		if column.ID != task.ColumnID {
			continue
		}
		m.selectedColumn = colIdx
		for taskIdx, candidate := range m.tasksForColumn(column.ID) {
			if candidate.ID == taskID {
				m.selectedTask = taskIdx
				return
			}
		}
	}
}

func (m Model) currentColumn() (domain.Column, bool) {
	if len(m.columns) == 0 {
		return domain.Column{}, false
	}
	return m.columns[clamp(m.selectedColumn, 0, len(m.columns)-1)], true
}

func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return m.tasksForColumn(column.ID)
}

func (m Model) tasksForColumn(columnID string) []domain.Task {
	return domain.Board{Tasks: m.tasks}.TasksInColumn(columnID)
}

func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

func (m Model) taskByID(taskID string) (domain.Task, bool) {
	for _, task := range m.tasks {
		if task.ID == taskID {
			return task, true
		}
	}
	return domain.Task{}, false
}

// columnWidthFor returns column width for.
func (m Model) columnWidth() int {
	if len(m.columns) == 0 {
		return 24
	}
	w := 28
	if m.width > 0 {
		// Per-column overhead: left/right border (2), horizontal padding (4), margin-right (1)
		const colOverhead = 7
		usable := m.width - len(m.columns)*colOverhead
		if candidate := usable / len(m.columns); candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 24, 42)
}

func (m Model) columnHeight() int {
	const headerLines, footerLines = 3, 4
	return max(14, m.height-headerLines-footerLines)
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// firstLine returns the first non-blank line of multi-line content.
func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
