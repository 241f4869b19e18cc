package domain

import "fmt"

// Board is the complete persisted state: the ordered column sequence and the ordered task sequence.
type Board struct {
	Columns []Column `json:"columns"`
	Tasks   []Task   `json:"tasks"`
}

// Clone returns a deep copy that shares no backing arrays with b.
func (b Board) Clone() Board {
	out := Board{
		Columns: make([]Column, len(b.Columns)),
		Tasks:   make([]Task, len(b.Tasks)),
	}
	copy(out.Columns, b.Columns)
	copy(out.Tasks, b.Tasks)
	return out
}

// ColumnIndex returns the sequence index of a column, or -1.
func (b Board) ColumnIndex(id string) int {
	for idx, column := range b.Columns {
		if column.ID == id {
			return idx
		}
	}
	return -1
}

// TaskIndex returns the sequence index of a task, or -1.
func (b Board) TaskIndex(id string) int {
	for idx, task := range b.Tasks {
		if task.ID == id {
			return idx
		}
	}
	return -1
}

// HasColumn reports whether a live column carries the id.
func (b Board) HasColumn(id string) bool {
	return b.ColumnIndex(id) >= 0
}

// TasksInColumn returns the visible slice of one column in rank order.
func (b Board) TasksInColumn(columnID string) []Task {
	out := make([]Task, 0)
	for _, task := range b.Tasks {
		if task.ColumnID == columnID {
			out = append(out, task)
		}
	}
	return out
}

// Normalize drops duplicate ids, blank ids, and tasks whose column is not live.
// It reports how many entries were dropped.
func (b Board) Normalize() (Board, int) {
	out := Board{
		Columns: make([]Column, 0, len(b.Columns)),
		Tasks:   make([]Task, 0, len(b.Tasks)),
	}
	dropped := 0
	seenColumns := map[string]struct{}{}
	for _, column := range b.Columns {
		if column.ID == "" {
			dropped++
			continue
		}
		if _, ok := seenColumns[column.ID]; ok {
			dropped++
			continue
		}
		seenColumns[column.ID] = struct{}{}
		out.Columns = append(out.Columns, column)
	}
	seenTasks := map[string]struct{}{}
	for _, task := range b.Tasks {
		if task.ID == "" {
			dropped++
			continue
		}
		if _, ok := seenTasks[task.ID]; ok {
			dropped++
			continue
		}
		if _, ok := seenColumns[task.ColumnID]; !ok {
			dropped++
			continue
		}
		seenTasks[task.ID] = struct{}{}
		out.Tasks = append(out.Tasks, task)
	}
	return out, dropped
}

// Validate reports the first structural problem that Normalize would repair.
func (b Board) Validate() error {
	seenColumns := map[string]struct{}{}
	for idx, column := range b.Columns {
		if column.ID == "" {
			return fmt.Errorf("columns[%d]: %w", idx, ErrInvalidID)
		}
		if _, ok := seenColumns[column.ID]; ok {
			return fmt.Errorf("columns[%d] %q: %w", idx, column.ID, ErrDuplicateID)
		}
		seenColumns[column.ID] = struct{}{}
	}
	seenTasks := map[string]struct{}{}
	for idx, task := range b.Tasks {
		if task.ID == "" {
			return fmt.Errorf("tasks[%d]: %w", idx, ErrInvalidID)
		}
		if _, ok := seenTasks[task.ID]; ok {
			return fmt.Errorf("tasks[%d] %q: %w", idx, task.ID, ErrDuplicateID)
		}
		if _, ok := seenColumns[task.ColumnID]; !ok {
			return fmt.Errorf("tasks[%d] %q references column %q: %w", idx, task.ID, task.ColumnID, ErrInvalidColumnID)
		}
		seenTasks[task.ID] = struct{}{}
	}
	return nil
}
