package app

import (
	"context"
	"reflect"
	"testing"

	"github.com/evanschultz/kanboard/internal/domain"
)

func itemPtr(item domain.DragItem) *domain.DragItem {
	return &item
}

// seedTasks returns a store holding todo:[a,b] doing:[c,d] in global order a,c,b,d.
func seedTasks(t *testing.T) (*Store, *DragController) {
	t.Helper()
	store, _ := newTestStore(t)
	err := store.ReplaceTasks(context.Background(), []domain.Task{
		{ID: "a", ColumnID: "todo"},
		{ID: "c", ColumnID: "doing"},
		{ID: "b", ColumnID: "todo"},
		{ID: "d", ColumnID: "doing"},
	})
	if err != nil {
		t.Fatalf("ReplaceTasks() error = %v", err)
	}
	return store, NewDragController(store)
}

func TestDragStartOverlay(t *testing.T) {
	store, ctrl := seedTasks(t)

	overlay, ok := ctrl.DragStart(domain.ColumnItem("todo"))
	if !ok || overlay.Column == nil || overlay.Column.ID != "todo" {
		t.Fatalf("unexpected column overlay %#v ok=%t", overlay, ok)
	}
	if got := taskIDs(overlay.Tasks); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected overlay tasks %#v", got)
	}
	active, ok := ctrl.Active()
	if !ok || active != domain.ColumnItem("todo") {
		t.Fatalf("unexpected active %#v", active)
	}

	overlay, ok = ctrl.DragStart(domain.TaskItem("c"))
	if !ok || overlay.Task == nil || overlay.Task.ColumnID != "doing" {
		t.Fatalf("unexpected task overlay %#v", overlay)
	}

	ctrl.Cancel()
	if _, ok := ctrl.DragStart(domain.TaskItem("missing")); ok {
		t.Fatal("expected unknown task to be refused")
	}
	if _, ok := ctrl.Active(); ok {
		t.Fatal("expected no active drag after refused start")
	}
	if len(store.Tasks()) != 4 {
		t.Fatal("expected drag start to not mutate")
	}
}

func TestDragOverSameColumnReorders(t *testing.T) {
	store, ctrl := seedTasks(t)
	if err := ctrl.DragOver(context.Background(), domain.TaskItem("b"), itemPtr(domain.TaskItem("a"))); err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	if got := taskIDs(store.Tasks()); !reflect.DeepEqual(got, []string{"b", "a", "c", "d"}) {
		t.Fatalf("unexpected order %#v", got)
	}
}

func TestDragOverCrossColumnLandsBeforeTarget(t *testing.T) {
	cases := []struct {
		name   string
		active string
		over   string
		want   []string
		column string
	}{
		{name: "forward", active: "a", over: "d", want: []string{"c", "b", "a", "d"}, column: "doing"},
		{name: "backward", active: "d", over: "a", want: []string{"d", "a", "c", "b"}, column: "todo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, ctrl := seedTasks(t)
			err := ctrl.DragOver(context.Background(), domain.TaskItem(tc.active), itemPtr(domain.TaskItem(tc.over)))
			if err != nil {
				t.Fatalf("DragOver() error = %v", err)
			}
			if got := taskIDs(store.Tasks()); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected order %#v", got)
			}
			task, _ := store.Task(tc.active)
			if task.ColumnID != tc.column {
				t.Fatalf("expected column %q, got %q", tc.column, task.ColumnID)
			}
			if len(store.Tasks()) != 4 {
				t.Fatal("expected task count preserved")
			}
		})
	}
}

func TestDragOverColumnAppendsLast(t *testing.T) {
	store, ctrl := seedTasks(t)
	ctx := context.Background()
	if err := ctrl.DragOver(ctx, domain.TaskItem("a"), itemPtr(domain.ColumnItem("doing"))); err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	if got := taskIDs(store.TasksInColumn("doing")); !reflect.DeepEqual(got, []string{"c", "d", "a"}) {
		t.Fatalf("expected task last in destination, got %#v", got)
	}

	before := store.Board()
	if err := ctrl.DragOver(ctx, domain.TaskItem("a"), itemPtr(domain.ColumnItem("doing"))); err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	if !reflect.DeepEqual(before, store.Board()) {
		t.Fatal("expected hovering own column to be a no-op")
	}
}

func TestDragOverNoops(t *testing.T) {
	store, ctrl := seedTasks(t)
	ctx := context.Background()
	before := store.Board()
	cases := []struct {
		name   string
		active domain.DragItem
		over   *domain.DragItem
	}{
		{name: "nil over", active: domain.TaskItem("a"), over: nil},
		{name: "self", active: domain.TaskItem("a"), over: itemPtr(domain.TaskItem("a"))},
		{name: "column active", active: domain.ColumnItem("todo"), over: itemPtr(domain.ColumnItem("done"))},
		{name: "unknown active", active: domain.TaskItem("zz"), over: itemPtr(domain.TaskItem("a"))},
		{name: "unknown over task", active: domain.TaskItem("a"), over: itemPtr(domain.TaskItem("zz"))},
		{name: "unknown over column", active: domain.TaskItem("a"), over: itemPtr(domain.ColumnItem("zz"))},
	}
	for _, tc := range cases {
		if err := ctrl.DragOver(ctx, tc.active, tc.over); err != nil {
			t.Fatalf("%s: DragOver() error = %v", tc.name, err)
		}
		if !reflect.DeepEqual(before, store.Board()) {
			t.Fatalf("%s: expected unchanged board", tc.name)
		}
	}
}

func TestDragEndMovesColumns(t *testing.T) {
	store, ctrl := seedTasks(t)
	ctx := context.Background()

	ctrl.DragStart(domain.ColumnItem("todo"))
	if err := ctrl.DragEnd(ctx, domain.ColumnItem("todo"), itemPtr(domain.ColumnItem("done"))); err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}
	if got := columnIDs(store.Columns()); !reflect.DeepEqual(got, []string{"doing", "done", "todo"}) {
		t.Fatalf("unexpected columns %#v", got)
	}
	if _, ok := ctrl.Active(); ok {
		t.Fatal("expected drag state cleared")
	}

	// task "c" lives in doing, index 0
	if err := ctrl.DragEnd(ctx, domain.ColumnItem("todo"), itemPtr(domain.TaskItem("c"))); err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}
	if got := columnIDs(store.Columns()); !reflect.DeepEqual(got, []string{"todo", "doing", "done"}) {
		t.Fatalf("unexpected columns after task target %#v", got)
	}
}

func TestDragEndAbortsAndClears(t *testing.T) {
	store, ctrl := seedTasks(t)
	ctx := context.Background()
	before := store.Board()
	cases := []struct {
		name   string
		active domain.DragItem
		over   *domain.DragItem
	}{
		{name: "nil over", active: domain.ColumnItem("todo"), over: nil},
		{name: "self", active: domain.ColumnItem("todo"), over: itemPtr(domain.ColumnItem("todo"))},
		{name: "own task", active: domain.ColumnItem("todo"), over: itemPtr(domain.TaskItem("a"))},
		{name: "unknown", active: domain.ColumnItem("todo"), over: itemPtr(domain.ColumnItem("zz"))},
		{name: "task active", active: domain.TaskItem("a"), over: itemPtr(domain.TaskItem("c"))},
	}
	for _, tc := range cases {
		ctrl.DragStart(tc.active)
		if err := ctrl.DragEnd(ctx, tc.active, tc.over); err != nil {
			t.Fatalf("%s: DragEnd() error = %v", tc.name, err)
		}
		if !reflect.DeepEqual(before, store.Board()) {
			t.Fatalf("%s: expected unchanged board", tc.name)
		}
		if _, ok := ctrl.Active(); ok {
			t.Fatalf("%s: expected drag state cleared", tc.name)
		}
	}
}

func TestScenarioAddMoveDeleteColumn(t *testing.T) {
	store, _ := newTestStore(t)
	ctrl := NewDragController(store)
	ctx := context.Background()

	t1, err := store.AddTask(ctx, "todo", "write docs")
	if err != nil || t1 == "" {
		t.Fatalf("AddTask() id=%q error = %v", t1, err)
	}
	if err := ctrl.DragOver(ctx, domain.TaskItem(t1), itemPtr(domain.ColumnItem("doing"))); err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	task, _ := store.Task(t1)
	if task.ColumnID != "doing" {
		t.Fatalf("expected task in doing, got %q", task.ColumnID)
	}
	if err := store.DeleteColumn(ctx, "doing"); err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if _, ok := store.Task(t1); ok {
		t.Fatal("expected task removed with its column")
	}
	if store.Board().HasColumn("doing") {
		t.Fatal("expected column removed")
	}
}

func TestDragAcceptsNonCanonicalKinds(t *testing.T) {
	store, ctrl := seedTasks(t)
	ctx := context.Background()

	overlay, ok := ctrl.DragStart(domain.DragItem{Kind: "Task", ID: " a "})
	if !ok || overlay.Task == nil || overlay.Item != domain.TaskItem("a") {
		t.Fatalf("unexpected overlay %#v ok=%t", overlay, ok)
	}
	if active, _ := ctrl.Active(); active != domain.TaskItem("a") {
		t.Fatalf("expected canonical active item, got %#v", active)
	}

	err := ctrl.DragOver(ctx, domain.DragItem{Kind: "Task", ID: "a"}, itemPtr(domain.DragItem{Kind: "Column", ID: "doing"}))
	if err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	if got := taskIDs(store.TasksInColumn("doing")); !reflect.DeepEqual(got, []string{"c", "d", "a"}) {
		t.Fatalf("expected task moved into doing, got %#v", got)
	}

	err = ctrl.DragEnd(ctx, domain.DragItem{Kind: "COLUMN", ID: "todo"}, itemPtr(domain.DragItem{Kind: " column ", ID: "done"}))
	if err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}
	if got := columnIDs(store.Columns()); !reflect.DeepEqual(got, []string{"doing", "done", "todo"}) {
		t.Fatalf("unexpected columns %#v", got)
	}
}

func TestDragOverTaskOntoColumnSharingItsID(t *testing.T) {
	store, _ := newTestStore(t)
	ctrl := NewDragController(store)
	ctx := context.Background()
	err := store.Reset(ctx, domain.Board{
		Columns: []domain.Column{{ID: "todo", Title: "To Do"}, {ID: "x", Title: "X"}},
		Tasks:   []domain.Task{{ID: "x", ColumnID: "todo", Content: "same id"}},
	})
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if err := ctrl.DragOver(ctx, domain.TaskItem("x"), itemPtr(domain.ColumnItem("x"))); err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	task, ok := store.Task("x")
	if !ok || task.ColumnID != "x" {
		t.Fatalf("expected task moved into column x, got %#v ok=%t", task, ok)
	}
}
