package app

import (
	"context"
	"slices"
	"sync"

	"github.com/evanschultz/kanboard/internal/domain"
)

// Overlay is the snapshot a presentation renders under the pointer while dragging.
type Overlay struct {
	Item   domain.DragItem `json:"item"`
	Column *domain.Column  `json:"column,omitempty"`
	Tasks  []domain.Task   `json:"tasks,omitempty"`
	Task   *domain.Task    `json:"task,omitempty"`
}

// DragController translates drag gestures into store reorders.
type DragController struct {
	mu     sync.Mutex
	store  *Store
	active *domain.DragItem
}

// NewDragController constructs a controller bound to store.
func NewDragController(store *Store) *DragController {
	return &DragController{store: store}
}

// Active returns the item currently being dragged.
func (c *DragController) Active() (domain.DragItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.DragItem{}, false
	}
	return *c.active, true
}

// DragStart records the dragged item and returns its overlay. Unknown items are refused.
func (c *DragController) DragStart(item domain.DragItem) (Overlay, bool) {
	item, err := item.Normalize()
	if err != nil {
		return Overlay{}, false
	}
	overlay := Overlay{Item: item}
	switch item.Kind {
	case domain.DragKindColumn:
		column, ok := c.store.Column(item.ID)
		if !ok {
			return Overlay{}, false
		}
		overlay.Column = &column
		overlay.Tasks = c.store.TasksInColumn(column.ID)
	case domain.DragKindTask:
		task, ok := c.store.Task(item.ID)
		if !ok {
			return Overlay{}, false
		}
		overlay.Task = &task
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = &item
	return overlay, true
}

// Cancel clears the drag state without touching the board.
func (c *DragController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
}

// DragOver live-reorders a dragged task while it hovers another task or a column.
// Column drags are ignored here; they commit on DragEnd.
func (c *DragController) DragOver(ctx context.Context, active domain.DragItem, over *domain.DragItem) error {
	active, target, ok := normalizeGesture(active, over)
	if !ok || active.Kind != domain.DragKindTask {
		return nil
	}
	_, err := c.store.mutateBoard(ctx, func(b *domain.Board) bool {
		from := b.TaskIndex(active.ID)
		if from < 0 {
			return false
		}
		switch target.Kind {
		case domain.DragKindTask:
			return moveTaskOverTask(b, from, b.TaskIndex(target.ID))
		case domain.DragKindColumn:
			return moveTaskOverColumn(b, from, target.ID)
		default:
			return false
		}
	})
	return err
}

// DragEnd commits a column drop and always clears the drag state.
// A task target resolves to the column holding that task.
func (c *DragController) DragEnd(ctx context.Context, active domain.DragItem, over *domain.DragItem) error {
	defer c.Cancel()
	active, target, ok := normalizeGesture(active, over)
	if !ok || active.Kind != domain.DragKindColumn {
		return nil
	}
	_, err := c.store.mutateBoard(ctx, func(b *domain.Board) bool {
		from := b.ColumnIndex(active.ID)
		to := -1
		switch target.Kind {
		case domain.DragKindColumn:
			to = b.ColumnIndex(target.ID)
		case domain.DragKindTask:
			if idx := b.TaskIndex(target.ID); idx >= 0 {
				to = b.ColumnIndex(b.Tasks[idx].ColumnID)
			}
		}
		if from < 0 || to < 0 || from == to {
			return false
		}
		b.Columns = domain.MoveItem(b.Columns, from, to)
		return true
	})
	return err
}

// normalizeGesture canonicalizes both ends of a gesture. It reports false when the
// target is missing, either item is malformed, or the item hovers itself.
func normalizeGesture(active domain.DragItem, over *domain.DragItem) (domain.DragItem, domain.DragItem, bool) {
	if over == nil {
		return domain.DragItem{}, domain.DragItem{}, false
	}
	active, err := active.Normalize()
	if err != nil {
		return domain.DragItem{}, domain.DragItem{}, false
	}
	target, err := over.Normalize()
	if err != nil {
		return domain.DragItem{}, domain.DragItem{}, false
	}
	return active, target, !active.Same(target)
}

// moveTaskOverTask reorders within a column, or moves across columns so the dragged
// task lands immediately before the hovered one.
func moveTaskOverTask(b *domain.Board, from, to int) bool {
	if to < 0 || from == to {
		return false
	}
	targetColumn := b.Tasks[to].ColumnID
	if b.Tasks[from].ColumnID == targetColumn {
		b.Tasks = domain.MoveItem(b.Tasks, from, to)
		return true
	}
	tasks := slices.Clone(b.Tasks)
	if err := tasks[from].Move(targetColumn); err != nil {
		return false
	}
	if from < to {
		to--
	}
	b.Tasks = domain.MoveItem(tasks, from, to)
	return true
}

// moveTaskOverColumn reassigns the task and sends it to the end of the sequence,
// which makes it the last card of the destination column.
func moveTaskOverColumn(b *domain.Board, from int, columnID string) bool {
	if !b.HasColumn(columnID) || b.Tasks[from].ColumnID == columnID {
		return false
	}
	tasks := domain.MoveItem(b.Tasks, from, len(b.Tasks)-1)
	if err := tasks[len(tasks)-1].Move(columnID); err != nil {
		return false
	}
	b.Tasks = tasks
	return true
}
