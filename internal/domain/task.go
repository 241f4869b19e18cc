package domain

import (
	"fmt"
	"strings"
)

// Task represents one card. Its rank inside a column is implied by its order in the task sequence.
type Task struct {
	ID       string `json:"id"`
	ColumnID string `json:"columnId"`
	Content  string `json:"content"`
}

// NewTask constructs a new value for this package.
func NewTask(id, columnID, content string) (Task, error) {
	id = strings.TrimSpace(id)
	columnID = strings.TrimSpace(columnID)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	if columnID == "" {
		return Task{}, ErrInvalidColumnID
	}
	return Task{
		ID:       id,
		ColumnID: columnID,
		Content:  content,
	}, nil
}

// Move reassigns the task to another column.
func (t *Task) Move(columnID string) error {
	columnID = strings.TrimSpace(columnID)
	if columnID == "" {
		return ErrInvalidColumnID
	}
	t.ColumnID = columnID
	return nil
}

// Edit replaces the task content in place.
func (t *Task) Edit(content string) {
	t.Content = content
}

// DefaultTaskContent fills a new task left blank. count is the number of tasks already in its column.
func DefaultTaskContent(count int) string {
	return fmt.Sprintf("Task %d", count+1)
}
