package app

import (
	"context"
	"testing"

	"github.com/evanschultz/kanboard/internal/domain"
)

func TestServiceSharesStoreWithDragController(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	id, err := svc.AddTask(ctx, "todo", "a")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if _, ok := svc.DragStart(domain.TaskItem(id)); !ok {
		t.Fatal("expected drag start to find task")
	}
	if active, ok := svc.ActiveDrag(); !ok || active.ID != id {
		t.Fatalf("unexpected active drag %#v", active)
	}
	if err := svc.DragOver(ctx, domain.TaskItem(id), itemPtr(domain.ColumnItem("done"))); err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	if err := svc.DragEnd(ctx, domain.TaskItem(id), nil); err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}
	if _, ok := svc.ActiveDrag(); ok {
		t.Fatal("expected drag cleared")
	}
	task, _ := store.Task(id)
	if task.ColumnID != "done" {
		t.Fatalf("expected task moved through service, got %q", task.ColumnID)
	}

	applied, err := svc.CommitTaskEdit(ctx, id, "")
	if err != nil || applied {
		t.Fatalf("expected empty edit to revert, applied=%t err=%v", applied, err)
	}
	applied, err = svc.CommitColumnEdit(ctx, "done", "Shipped")
	if err != nil || !applied {
		t.Fatalf("CommitColumnEdit() applied=%t err=%v", applied, err)
	}

	svc.DragStart(domain.ColumnItem("todo"))
	svc.CancelDrag()
	if _, ok := svc.ActiveDrag(); ok {
		t.Fatal("expected cancel to clear drag")
	}
}
