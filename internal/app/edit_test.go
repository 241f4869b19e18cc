package app

import (
	"context"
	"testing"
)

func TestCommitTaskEdit(t *testing.T) {
	store, persister := newTestStore(t)
	ctx := context.Background()
	id, _ := store.AddTask(ctx, "todo", "write docs")
	saves := persister.saves

	for _, raw := range []string{"", "   ", "\t\n"} {
		applied, err := CommitTaskEdit(ctx, store, id, raw)
		if err != nil {
			t.Fatalf("CommitTaskEdit(%q) error = %v", raw, err)
		}
		if applied {
			t.Fatalf("expected %q to revert", raw)
		}
	}
	if task, _ := store.Task(id); task.Content != "write docs" {
		t.Fatalf("expected content unchanged, got %q", task.Content)
	}
	if persister.saves != saves {
		t.Fatal("expected reverted edits to skip autosave")
	}

	applied, err := CommitTaskEdit(ctx, store, id, "  ship it  ")
	if err != nil || !applied {
		t.Fatalf("CommitTaskEdit() applied=%t error = %v", applied, err)
	}
	if task, _ := store.Task(id); task.Content != "ship it" {
		t.Fatalf("expected trimmed content, got %q", task.Content)
	}

	applied, _ = CommitTaskEdit(ctx, store, "missing", "x")
	if applied {
		t.Fatal("expected unknown task to be ignored")
	}
}

func TestCommitColumnEdit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	applied, err := CommitColumnEdit(ctx, store, "todo", " ")
	if err != nil || applied {
		t.Fatalf("expected revert, applied=%t error=%v", applied, err)
	}
	applied, err = CommitColumnEdit(ctx, store, "todo", " Backlog ")
	if err != nil || !applied {
		t.Fatalf("CommitColumnEdit() applied=%t error = %v", applied, err)
	}
	column, _ := store.Column("todo")
	if column.Title != "Backlog" {
		t.Fatalf("unexpected title %q", column.Title)
	}
	applied, _ = CommitColumnEdit(ctx, store, "todo", "Backlog")
	if applied {
		t.Fatal("expected identical title to report no change")
	}
}
