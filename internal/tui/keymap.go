package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	reload       key.Binding
	toggleHelp   key.Binding
	moveLeft     key.Binding
	moveRight    key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	addTask      key.Binding
	addColumn    key.Binding
	taskInfo     key.Binding
	editTask     key.Binding
	renameColumn key.Binding
	deleteTask   key.Binding
	deleteColumn key.Binding
	copyTask     key.Binding
	pickTask     key.Binding
	pickColumn   key.Binding
	drop         key.Binding
	cancel       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		addColumn:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new column")),
		taskInfo:     key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		editTask:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		renameColumn: key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "rename column")),
		deleteTask:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		deleteColumn: key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "delete column")),
		copyTask:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
		pickTask:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "drag task")),
		pickColumn:   key.NewBinding(key.WithKeys("M", "shift+m"), key.WithHelp("M", "drag column")),
		drop:         key.NewBinding(key.WithKeys("enter", "space", " "), key.WithHelp("enter/space", "drop")),
		cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.addColumn, k.editTask, k.pickTask, k.pickColumn, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.addColumn, k.taskInfo, k.editTask, k.renameColumn, k.copyTask, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.pickTask, k.pickColumn, k.drop, k.cancel},
		{k.deleteTask, k.deleteColumn},
	}
}

// dragKeyMap narrows the footer while a drag gesture is active.
type dragKeyMap struct {
	keys keyMap
}

// ShortHelp handles short help.
func (d dragKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{d.keys.moveLeft, d.keys.moveRight, d.keys.moveUp, d.keys.moveDown, d.keys.drop, d.keys.cancel}
}

// FullHelp handles full help.
func (d dragKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{d.ShortHelp()}
}
