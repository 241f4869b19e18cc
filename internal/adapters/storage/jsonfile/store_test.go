package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := store.Load(ctx, app.DefaultStorageKey); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	board := domain.Board{
		Columns: []domain.Column{{ID: "todo", Title: "To Do"}},
		Tasks:   []domain.Task{{ID: "t1", ColumnID: "todo", Content: "a"}},
	}
	if err := store.Save(ctx, app.DefaultStorageKey, board); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	wantPath := filepath.Join(dir, "kanban-storage.json")
	if store.Path(app.DefaultStorageKey) != wantPath {
		t.Fatalf("unexpected path %q", store.Path(app.DefaultStorageKey))
	}
	if _, err := os.Stat(wantPath + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed, stat err=%v", err)
	}
	loaded, err := store.Load(ctx, app.DefaultStorageKey)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(board, loaded) {
		t.Fatalf("round trip mismatch\nwant=%#v\ngot=%#v", board, loaded)
	}
}

func TestLoadRejectsCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	if err := os.WriteFile(store.Path("k"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := store.Load(context.Background(), "k")
	if err == nil || errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileStemSanitizesKeys(t *testing.T) {
	cases := map[string]string{
		"kanban-storage": "kanban-storage",
		"../etc/passwd":  "etc-passwd",
		"  ":             app.DefaultStorageKey,
		"board one":      "board-one",
	}
	for in, want := range cases {
		if got := fileStem(in); got != want {
			t.Fatalf("fileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(" "); err == nil {
		t.Fatal("expected error for blank dir")
	}
}

func TestUpdatedAtTracksFileWrites(t *testing.T) {
	ctx := context.Background()
	store, _ := New(t.TempDir())
	if _, err := store.UpdatedAt(ctx, "k"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, "k", domain.Board{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	stamp := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if err := os.Chtimes(store.Path("k"), stamp, stamp); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
	got, err := store.UpdatedAt(ctx, "k")
	if err != nil {
		t.Fatalf("UpdatedAt() error = %v", err)
	}
	if !got.Equal(stamp) {
		t.Fatalf("unexpected updated at %s", got)
	}
}
