package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "nested", "kanboard.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func TestRepository_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, err := repo.Load(ctx, app.DefaultStorageKey); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	board := domain.Board{
		Columns: []domain.Column{{ID: "todo", Title: "To Do"}, {ID: "done", Title: "Done"}},
		Tasks: []domain.Task{
			{ID: "t1", ColumnID: "done", Content: "ship"},
			{ID: "t2", ColumnID: "todo", Content: "write \"docs\""},
		},
	}
	if err := repo.Save(ctx, app.DefaultStorageKey, board); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := repo.Load(ctx, app.DefaultStorageKey)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(board, loaded) {
		t.Fatalf("round trip mismatch\nwant=%#v\ngot=%#v", board, loaded)
	}
	updated, err := repo.UpdatedAt(ctx, app.DefaultStorageKey)
	if err != nil {
		t.Fatalf("UpdatedAt() error = %v", err)
	}
	if !updated.Equal(now) {
		t.Fatalf("unexpected updated_at %s", updated)
	}
}

func TestRepository_SaveOverwritesAndKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	first := domain.Board{Columns: []domain.Column{{ID: "a", Title: "A"}}, Tasks: []domain.Task{}}
	second := domain.Board{Columns: []domain.Column{{ID: "b", Title: "B"}}, Tasks: []domain.Task{}}
	if err := repo.Save(ctx, "one", first); err != nil {
		t.Fatalf("Save(one) error = %v", err)
	}
	if err := repo.Save(ctx, "two", first); err != nil {
		t.Fatalf("Save(two) error = %v", err)
	}
	if err := repo.Save(ctx, "one", second); err != nil {
		t.Fatalf("Save(one) overwrite error = %v", err)
	}
	got, _ := repo.Load(ctx, "one")
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("expected overwrite, got %#v", got)
	}
	got, _ = repo.Load(ctx, "two")
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("expected untouched record, got %#v", got)
	}

	if _, err := repo.UpdatedAt(ctx, "three"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing record timestamp, got %v", err)
	}
}

func TestRepository_NilSlicesEncodeAsArrays(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	if err := repo.Save(ctx, "empty", domain.Board{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	var raw string
	if err := repo.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE name = ?`, "empty").Scan(&raw); err != nil {
		t.Fatalf("query error = %v", err)
	}
	if raw != `{"columns":[],"tasks":[]}` {
		t.Fatalf("unexpected stored value %s", raw)
	}
}

func TestRepository_BacksStore(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	store := app.NewStore(repo, nil, app.StoreConfig{Key: "store-test"})
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	id, err := store.AddTask(ctx, "todo", "persist me")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	reloaded := app.NewStore(repo, nil, app.StoreConfig{Key: "store-test"})
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	task, ok := reloaded.Task(id)
	if !ok || task.Content != "persist me" {
		t.Fatalf("expected persisted task, got %#v ok=%t", task, ok)
	}
}
