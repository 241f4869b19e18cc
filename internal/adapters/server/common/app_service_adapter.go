package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto the app.Service board operations.
type AppServiceAdapter struct {
	service *app.Service
}

var _ BoardService = (*AppServiceAdapter)(nil)

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// GetBoard returns the current board snapshot.
func (a *AppServiceAdapter) GetBoard(context.Context) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	return a.snapshot(), nil
}

// AddColumn appends a column. A blank title falls back to the numbered default.
func (a *AppServiceAdapter) AddColumn(ctx context.Context, in AddColumnRequest) (domain.Column, error) {
	if err := a.ready(); err != nil {
		return domain.Column{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = domain.DefaultColumnTitle(len(a.service.Columns()))
	}
	id, err := a.service.AddColumn(ctx, title)
	column, _ := a.service.Column(id)
	if err != nil {
		return column, mapAppError("add column", err)
	}
	return column, nil
}

// RenameColumn applies the inline edit policy to one column title.
func (a *AppServiceAdapter) RenameColumn(ctx context.Context, in RenameColumnRequest) (EditResult, error) {
	if err := a.ready(); err != nil {
		return EditResult{}, err
	}
	id, err := requireID("column id", in.ID)
	if err != nil {
		return EditResult{}, err
	}
	if _, ok := a.service.Column(id); !ok {
		return EditResult{}, fmt.Errorf("column %q: %w", id, ErrNotFound)
	}
	applied, err := a.service.CommitColumnEdit(ctx, id, in.Title)
	if err != nil {
		return EditResult{Applied: applied, Board: a.snapshot()}, mapAppError("rename column", err)
	}
	return EditResult{Applied: applied, Board: a.snapshot()}, nil
}

// DeleteColumn removes a column together with its tasks.
func (a *AppServiceAdapter) DeleteColumn(ctx context.Context, id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	id, err := requireID("column id", id)
	if err != nil {
		return err
	}
	if _, ok := a.service.Column(id); !ok {
		return fmt.Errorf("column %q: %w", id, ErrNotFound)
	}
	return mapAppError("delete column", a.service.DeleteColumn(ctx, id))
}

// AddTask appends a task to a column. Blank content falls back to the numbered default.
func (a *AppServiceAdapter) AddTask(ctx context.Context, in AddTaskRequest) (domain.Task, error) {
	if err := a.ready(); err != nil {
		return domain.Task{}, err
	}
	columnID, err := requireID("column_id", in.ColumnID)
	if err != nil {
		return domain.Task{}, err
	}
	if _, ok := a.service.Column(columnID); !ok {
		return domain.Task{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		content = domain.DefaultTaskContent(len(a.service.TasksInColumn(columnID)))
	}
	id, err := a.service.AddTask(ctx, columnID, content)
	if id == "" && err == nil {
		return domain.Task{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	task, _ := a.service.Task(id)
	if err != nil {
		return task, mapAppError("add task", err)
	}
	return task, nil
}

// EditTask applies the inline edit policy to one task's content.
func (a *AppServiceAdapter) EditTask(ctx context.Context, in EditTaskRequest) (EditResult, error) {
	if err := a.ready(); err != nil {
		return EditResult{}, err
	}
	id, err := requireID("task id", in.ID)
	if err != nil {
		return EditResult{}, err
	}
	if _, ok := a.service.Task(id); !ok {
		return EditResult{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	applied, err := a.service.CommitTaskEdit(ctx, id, in.Content)
	if err != nil {
		return EditResult{Applied: applied, Board: a.snapshot()}, mapAppError("edit task", err)
	}
	return EditResult{Applied: applied, Board: a.snapshot()}, nil
}

// DeleteTask removes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, id string) error {
	if err := a.ready(); err != nil {
		return err
	}
	id, err := requireID("task id", id)
	if err != nil {
		return err
	}
	if _, ok := a.service.Task(id); !ok {
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return mapAppError("delete task", a.service.DeleteTask(ctx, id))
}

// DragStart begins a gesture and returns the overlay snapshot.
func (a *AppServiceAdapter) DragStart(_ context.Context, item domain.DragItem) (app.Overlay, error) {
	if err := a.ready(); err != nil {
		return app.Overlay{}, err
	}
	if err := validateItem("active", item); err != nil {
		return app.Overlay{}, err
	}
	overlay, ok := a.service.DragStart(item)
	if !ok {
		return app.Overlay{}, fmt.Errorf("%s %q: %w", item.Kind, item.ID, ErrNotFound)
	}
	return overlay, nil
}

// DragOver forwards one hover event. Events that do not apply leave the board unchanged.
func (a *AppServiceAdapter) DragOver(ctx context.Context, in DragRequest) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	if err := validateDrag(in); err != nil {
		return BoardSnapshot{}, err
	}
	if err := a.service.DragOver(ctx, in.Active, in.Over); err != nil {
		return a.snapshot(), mapAppError("drag over", err)
	}
	return a.snapshot(), nil
}

// DragEnd forwards one drop event and clears the gesture.
func (a *AppServiceAdapter) DragEnd(ctx context.Context, in DragRequest) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	if err := validateDrag(in); err != nil {
		return BoardSnapshot{}, err
	}
	if err := a.service.DragEnd(ctx, in.Active, in.Over); err != nil {
		return a.snapshot(), mapAppError("drag end", err)
	}
	return a.snapshot(), nil
}

// MoveTask drags one task over a target in a single call.
func (a *AppServiceAdapter) MoveTask(ctx context.Context, taskID string, over domain.DragItem) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	id, err := requireID("task id", taskID)
	if err != nil {
		return BoardSnapshot{}, err
	}
	if _, ok := a.service.Task(id); !ok {
		return BoardSnapshot{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	if err := a.requireTarget(over); err != nil {
		return BoardSnapshot{}, err
	}
	return a.DragOver(ctx, DragRequest{Active: domain.TaskItem(id), Over: &over})
}

// MoveColumn drops one column onto a target in a single call.
func (a *AppServiceAdapter) MoveColumn(ctx context.Context, columnID string, over domain.DragItem) (BoardSnapshot, error) {
	if err := a.ready(); err != nil {
		return BoardSnapshot{}, err
	}
	id, err := requireID("column id", columnID)
	if err != nil {
		return BoardSnapshot{}, err
	}
	if _, ok := a.service.Column(id); !ok {
		return BoardSnapshot{}, fmt.Errorf("column %q: %w", id, ErrNotFound)
	}
	if err := a.requireTarget(over); err != nil {
		return BoardSnapshot{}, err
	}
	return a.DragEnd(ctx, DragRequest{Active: domain.ColumnItem(id), Over: &over})
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrStorage)
	}
	return nil
}

func (a *AppServiceAdapter) snapshot() BoardSnapshot {
	board := a.service.Board()
	return BoardSnapshot{
		Key:         a.service.Key(),
		ColumnCount: len(board.Columns),
		TaskCount:   len(board.Tasks),
		Columns:     board.Columns,
		Tasks:       board.Tasks,
	}
}

// requireTarget rejects drop targets that name nothing on the board.
func (a *AppServiceAdapter) requireTarget(over domain.DragItem) error {
	over, err := over.Normalize()
	if err != nil {
		return fmt.Errorf("over: %w", errors.Join(ErrInvalidRequest, err))
	}
	switch over.Kind {
	case domain.DragKindColumn:
		if _, ok := a.service.Column(over.ID); !ok {
			return fmt.Errorf("column %q: %w", over.ID, ErrNotFound)
		}
	case domain.DragKindTask:
		if _, ok := a.service.Task(over.ID); !ok {
			return fmt.Errorf("task %q: %w", over.ID, ErrNotFound)
		}
	}
	return nil
}

func requireID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%s is required: %w", field, ErrInvalidRequest)
	}
	return id, nil
}

func validateItem(field string, item domain.DragItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%s: %w", field, errors.Join(ErrInvalidRequest, err))
	}
	return nil
}

func validateDrag(in DragRequest) error {
	if err := validateItem("active", in.Active); err != nil {
		return err
	}
	if in.Over != nil {
		return validateItem("over", *in.Over)
	}
	return nil
}

// mapAppError translates app errors into transport error categories.
func mapAppError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrPersist):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidColumnID),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrDuplicateID):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
