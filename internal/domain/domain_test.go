package domain

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestNewColumnValidation(t *testing.T) {
	if _, err := NewColumn("  ", "To Do"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	c, err := NewColumn(" todo ", "To Do")
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	if c.ID != "todo" || c.Title != "To Do" {
		t.Fatalf("unexpected column %#v", c)
	}
	c.Rename("")
	if c.Title != "" {
		t.Fatalf("expected rename to accept empty title, got %q", c.Title)
	}
}

func TestNewTaskValidation(t *testing.T) {
	if _, err := NewTask("", "todo", "x"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewTask("t1", " ", "x"); err != ErrInvalidColumnID {
		t.Fatalf("expected ErrInvalidColumnID, got %v", err)
	}
	task, err := NewTask("t1", "todo", "write docs")
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := task.Move(""); err != ErrInvalidColumnID {
		t.Fatalf("expected ErrInvalidColumnID, got %v", err)
	}
	if err := task.Move("done"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if task.ColumnID != "done" {
		t.Fatalf("unexpected column %q", task.ColumnID)
	}
}

func TestMoveItem(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		want     []string
	}{
		{name: "forward", from: 0, to: 2, want: []string{"b", "c", "a", "d"}},
		{name: "backward", from: 3, to: 1, want: []string{"a", "d", "b", "c"}},
		{name: "identity", from: 2, to: 2, want: []string{"a", "b", "c", "d"}},
		{name: "clamp high", from: 0, to: 99, want: []string{"b", "c", "d", "a"}},
		{name: "clamp low", from: 2, to: -5, want: []string{"c", "a", "b", "d"}},
		{name: "missing source", from: -1, to: 0, want: []string{"a", "b", "c", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := []string{"a", "b", "c", "d"}
			got := MoveItem(in, tc.from, tc.to)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("MoveItem(%d, %d) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
			if !slices.Equal(in, []string{"a", "b", "c", "d"}) {
				t.Fatalf("input mutated: %v", in)
			}
		})
	}
}

func TestBoardNormalizeDropsOrphansAndDuplicates(t *testing.T) {
	b := Board{
		Columns: []Column{{ID: "todo"}, {ID: "todo"}, {ID: ""}, {ID: "done"}},
		Tasks: []Task{
			{ID: "t1", ColumnID: "todo"},
			{ID: "t1", ColumnID: "done"},
			{ID: "t2", ColumnID: "gone"},
			{ID: "t3", ColumnID: "done"},
		},
	}
	if err := b.Validate(); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Validate() error = %v, want ErrDuplicateID", err)
	}
	got, dropped := b.Normalize()
	if dropped != 4 {
		t.Fatalf("dropped = %d, want 4", dropped)
	}
	if len(got.Columns) != 2 || len(got.Tasks) != 2 {
		t.Fatalf("unexpected normalized board %#v", got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate(normalized) error = %v", err)
	}
}

func TestBoardValidateOrphan(t *testing.T) {
	b := Board{
		Columns: []Column{{ID: "todo"}},
		Tasks:   []Task{{ID: "t1", ColumnID: "doing"}},
	}
	if err := b.Validate(); !errors.Is(err, ErrInvalidColumnID) {
		t.Fatalf("Validate() error = %v, want ErrInvalidColumnID", err)
	}
}

func TestBoardCloneAndTasksInColumn(t *testing.T) {
	b := Board{
		Columns: []Column{{ID: "todo"}, {ID: "done"}},
		Tasks: []Task{
			{ID: "t1", ColumnID: "todo"},
			{ID: "t2", ColumnID: "done"},
			{ID: "t3", ColumnID: "todo"},
		},
	}
	clone := b.Clone()
	clone.Tasks[0].Content = "changed"
	if b.Tasks[0].Content != "" {
		t.Fatal("expected clone to not share task storage")
	}
	todo := b.TasksInColumn("todo")
	if len(todo) != 2 || todo[0].ID != "t1" || todo[1].ID != "t3" {
		t.Fatalf("unexpected column slice %#v", todo)
	}
	if b.TaskIndex("t3") != 2 || b.ColumnIndex("done") != 1 || b.ColumnIndex("x") != -1 {
		t.Fatal("unexpected index lookups")
	}
}

func TestDragItem(t *testing.T) {
	if _, err := ParseDragKind("Task"); err != nil {
		t.Fatalf("ParseDragKind() error = %v", err)
	}
	if _, err := ParseDragKind("card"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if err := TaskItem("").Validate(); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if err := ColumnItem("todo").Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !TaskItem("x").Same(TaskItem("x")) {
		t.Fatal("expected identical items to compare equal")
	}
	if TaskItem("x").Same(ColumnItem("x")) {
		t.Fatal("expected a task and a column sharing an id to differ")
	}
}

func TestDragItemNormalize(t *testing.T) {
	got, err := DragItem{Kind: " Task ", ID: " t1 "}.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got != TaskItem("t1") {
		t.Fatalf("unexpected normalized item %#v", got)
	}
	if _, err := (DragItem{Kind: "lane", ID: "x"}).Normalize(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestDragItemUnmarshalJSONCanonicalizesKind(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want DragItem
	}{
		{name: "capitalized task", raw: `{"kind":"Task","id":"t1"}`, want: TaskItem("t1")},
		{name: "upper column padded", raw: `{"kind":" COLUMN ","id":" done "}`, want: ColumnItem("done")},
		{name: "canonical", raw: `{"kind":"task","id":"t2"}`, want: TaskItem("t2")},
		{name: "unknown kept verbatim", raw: `{"kind":"Lane","id":"x"}`, want: DragItem{Kind: "Lane", ID: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got DragItem
			if err := json.Unmarshal([]byte(tc.raw), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}

	var strict DragItem
	if err := json.Unmarshal([]byte(`{"kind":"task","id":"t1","lane":"x"}`), &strict); err == nil {
		t.Fatal("expected unknown field error")
	}

	var bad DragItem
	if err := json.Unmarshal([]byte(`{"kind":"Lane","id":"x"}`), &bad); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestDefaultNames(t *testing.T) {
	if got := DefaultColumnTitle(3); got != "Column 4" {
		t.Fatalf("unexpected column title %q", got)
	}
	if got := DefaultTaskContent(0); got != "Task 1" {
		t.Fatalf("unexpected task content %q", got)
	}
}
