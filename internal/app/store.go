package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/google/uuid"
)

// DefaultStorageKey names the persisted board record.
const DefaultStorageKey = "kanban-storage"

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// StoreConfig holds configuration for store.
type StoreConfig struct {
	Key            string
	DefaultColumns []domain.Column
}

// DefaultColumns returns the columns of a fresh board.
func DefaultColumns() []domain.Column {
	return []domain.Column{
		{ID: "todo", Title: "To Do"},
		{ID: "doing", Title: "In Progress"},
		{ID: "done", Title: "Done"},
	}
}

// Store owns the ordered column and task sequences of one board.
// Every mutation is autosaved through the persister.
type Store struct {
	mu        sync.Mutex
	persister Persister
	idGen     IDGenerator
	key       string
	defaults  []domain.Column
	board     domain.Board
}

// NewStore constructs a store holding the default board until Load is called.
// A nil persister keeps the board in memory only.
func NewStore(persister Persister, idGen IDGenerator, cfg StoreConfig) *Store {
	if idGen == nil {
		idGen = uuid.NewString
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = DefaultStorageKey
	}
	defaults := sanitizeColumns(cfg.DefaultColumns)
	if len(defaults) == 0 {
		defaults = DefaultColumns()
	}
	return &Store{
		persister: persister,
		idGen:     idGen,
		key:       key,
		defaults:  defaults,
		board:     domain.Board{Columns: slices.Clone(defaults), Tasks: []domain.Task{}},
	}
}

// Key returns the persisted record name.
func (s *Store) Key() string {
	return s.key
}

// Load hydrates the board from the persister. A missing record yields the default board.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persister == nil {
		return nil
	}
	board, err := s.persister.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.board = s.defaultBoard()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load board %q: %w", s.key, err)
	}
	s.board, _ = board.Normalize()
	return nil
}

// SavedAt reports when the board record was last written.
// ok is false when nothing has been saved or the persister does not track write times.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool, error) {
	clock, ok := s.persister.(RecordClock)
	if !ok {
		return time.Time{}, false, nil
	}
	at, err := clock.UpdatedAt(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read board %q timestamp: %w", s.key, err)
	}
	return at, true, nil
}

// Save writes the full board snapshot.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

// Reset replaces the whole board. Orphans and duplicate ids are dropped first.
func (s *Store) Reset(ctx context.Context, board domain.Board) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		*b, _ = board.Clone().Normalize()
		return true
	})
	return err
}

// Board returns a deep copy of the current state.
func (s *Store) Board() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Columns returns the ordered column sequence.
func (s *Store) Columns() []domain.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.board.Columns)
}

// Tasks returns the ordered task sequence.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.board.Tasks)
}

// TasksInColumn returns one column's tasks in rank order.
func (s *Store) TasksInColumn(columnID string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.TasksInColumn(columnID)
}

// Column looks up a column by id.
func (s *Store) Column(id string) (domain.Column, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.board.ColumnIndex(id)
	if idx < 0 {
		return domain.Column{}, false
	}
	return s.board.Columns[idx], true
}

// Task looks up a task by id.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.board.TaskIndex(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.board.Tasks[idx], true
}

// Counts returns the number of columns and tasks.
func (s *Store) Counts() (columns, tasks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.board.Columns), len(s.board.Tasks)
}

// AddColumn appends a column and returns its id.
func (s *Store) AddColumn(ctx context.Context, title string) (string, error) {
	id := ""
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		column, err := domain.NewColumn(s.nextID(b), title)
		if err != nil {
			return false
		}
		id = column.ID
		b.Columns = append(b.Columns, column)
		return true
	})
	return id, err
}

// DeleteColumn removes a column and every task assigned to it.
func (s *Store) DeleteColumn(ctx context.Context, id string) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		idx := b.ColumnIndex(id)
		if idx < 0 {
			return false
		}
		b.Columns = slices.Delete(b.Columns, idx, idx+1)
		b.Tasks = slices.DeleteFunc(b.Tasks, func(task domain.Task) bool {
			return task.ColumnID == id
		})
		return true
	})
	return err
}

// UpdateColumn replaces a column title. Unknown ids are ignored.
func (s *Store) UpdateColumn(ctx context.Context, id, title string) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		idx := b.ColumnIndex(id)
		if idx < 0 {
			return false
		}
		b.Columns[idx].Rename(title)
		return true
	})
	return err
}

// ReplaceColumns swaps the column sequence wholesale. Tasks of dropped columns go with them.
func (s *Store) ReplaceColumns(ctx context.Context, columns []domain.Column) error {
	return s.MutateColumns(ctx, func([]domain.Column) []domain.Column {
		return columns
	})
}

// MutateColumns applies fn to a copy of the column sequence and stores the result.
func (s *Store) MutateColumns(ctx context.Context, fn func([]domain.Column) []domain.Column) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		next := domain.Board{Columns: slices.Clone(fn(slices.Clone(b.Columns))), Tasks: b.Tasks}
		*b, _ = next.Normalize()
		return true
	})
	return err
}

// AddTask appends a task to the end of the task sequence and returns its id.
// An unknown column leaves the board untouched and returns an empty id.
func (s *Store) AddTask(ctx context.Context, columnID, content string) (string, error) {
	id := ""
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		if !b.HasColumn(columnID) {
			return false
		}
		task, err := domain.NewTask(s.nextID(b), columnID, content)
		if err != nil {
			return false
		}
		id = task.ID
		b.Tasks = append(b.Tasks, task)
		return true
	})
	return id, err
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		idx := b.TaskIndex(id)
		if idx < 0 {
			return false
		}
		b.Tasks = slices.Delete(b.Tasks, idx, idx+1)
		return true
	})
	return err
}

// UpdateTask replaces task content. Unknown ids are ignored.
func (s *Store) UpdateTask(ctx context.Context, id, content string) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		idx := b.TaskIndex(id)
		if idx < 0 {
			return false
		}
		b.Tasks[idx].Edit(content)
		return true
	})
	return err
}

// ReplaceTasks swaps the task sequence wholesale. Tasks referencing unknown columns are dropped.
func (s *Store) ReplaceTasks(ctx context.Context, tasks []domain.Task) error {
	return s.MutateTasks(ctx, func([]domain.Task) []domain.Task {
		return tasks
	})
}

// MutateTasks applies fn to a copy of the task sequence and stores the result.
func (s *Store) MutateTasks(ctx context.Context, fn func([]domain.Task) []domain.Task) error {
	_, err := s.mutateBoard(ctx, func(b *domain.Board) bool {
		next := domain.Board{Columns: b.Columns, Tasks: slices.Clone(fn(slices.Clone(b.Tasks)))}
		*b, _ = next.Normalize()
		return true
	})
	return err
}

// mutateBoard runs fn under the lock and autosaves when fn reports a change.
// The in-memory change stands even when the save fails.
func (s *Store) mutateBoard(ctx context.Context, fn func(*domain.Board) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(&s.board) {
		return false, nil
	}
	return true, s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, s.key, s.board.Clone()); err != nil {
		return fmt.Errorf("%w %q: %w", ErrPersist, s.key, err)
	}
	return nil
}

// nextID draws ids until one is unused on the board.
func (s *Store) nextID(b *domain.Board) string {
	for range 8 {
		id := strings.TrimSpace(s.idGen())
		if id == "" {
			continue
		}
		if b.ColumnIndex(id) < 0 && b.TaskIndex(id) < 0 {
			return id
		}
	}
	return uuid.NewString()
}

func (s *Store) defaultBoard() domain.Board {
	return domain.Board{Columns: slices.Clone(s.defaults), Tasks: []domain.Task{}}
}

// sanitizeColumns trims ids and drops blank or repeated entries.
func sanitizeColumns(in []domain.Column) []domain.Column {
	out := make([]domain.Column, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		column, err := domain.NewColumn(raw.ID, strings.TrimSpace(raw.Title))
		if err != nil {
			continue
		}
		if _, ok := seen[column.ID]; ok {
			continue
		}
		seen[column.ID] = struct{}{}
		out = append(out, column)
	}
	return out
}
