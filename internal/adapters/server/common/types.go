// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrStorage reports that a change applied in memory but could not be persisted.
var ErrStorage = errors.New("storage unavailable")

// BoardSnapshot is the read model returned by every board-shaped response.
type BoardSnapshot struct {
	Key         string          `json:"key"`
	ColumnCount int             `json:"column_count"`
	TaskCount   int             `json:"task_count"`
	Columns     []domain.Column `json:"columns"`
	Tasks       []domain.Task   `json:"tasks"`
}

// AddColumnRequest stores transport input for column creation.
type AddColumnRequest struct {
	Title string `json:"title"`
}

// RenameColumnRequest stores transport input for inline column edits.
type RenameColumnRequest struct {
	ID    string `json:"-"`
	Title string `json:"title"`
}

// AddTaskRequest stores transport input for task creation.
type AddTaskRequest struct {
	ColumnID string `json:"column_id"`
	Content  string `json:"content"`
}

// EditTaskRequest stores transport input for inline task edits.
type EditTaskRequest struct {
	ID      string `json:"-"`
	Content string `json:"content"`
}

// DragRequest carries one drag event. Over is nil when the pointer is over nothing.
type DragRequest struct {
	Active domain.DragItem  `json:"active"`
	Over   *domain.DragItem `json:"over,omitempty"`
}

// EditResult reports whether an inline edit was applied or reverted.
type EditResult struct {
	Applied bool          `json:"applied"`
	Board   BoardSnapshot `json:"board"`
}

// BoardService is the board surface shared by the REST and MCP transports.
type BoardService interface {
	GetBoard(context.Context) (BoardSnapshot, error)
	AddColumn(context.Context, AddColumnRequest) (domain.Column, error)
	RenameColumn(context.Context, RenameColumnRequest) (EditResult, error)
	DeleteColumn(context.Context, string) error
	AddTask(context.Context, AddTaskRequest) (domain.Task, error)
	EditTask(context.Context, EditTaskRequest) (EditResult, error)
	DeleteTask(context.Context, string) error
	DragStart(context.Context, domain.DragItem) (app.Overlay, error)
	DragOver(context.Context, DragRequest) (BoardSnapshot, error)
	DragEnd(context.Context, DragRequest) (BoardSnapshot, error)
	MoveTask(context.Context, string, domain.DragItem) (BoardSnapshot, error)
	MoveColumn(context.Context, string, domain.DragItem) (BoardSnapshot, error)
}
