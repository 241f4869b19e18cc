// Package jsonfile persists board records as one JSON document per key.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
)

// Store writes <dir>/<key>.json.
type Store struct {
	dir string
}

var (
	_ app.Persister   = (*Store)(nil)
	_ app.RecordClock = (*Store)(nil)
)

// New constructs a store rooted at dir. The directory is created on first save.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("jsonfile dir is required")
	}
	return &Store{dir: dir}, nil
}

// Path returns the file that backs key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, fileStem(key)+".json")
}

// Load reads and decodes the record for key.
func (s *Store) Load(_ context.Context, key string) (domain.Board, error) {
	path := s.Path(key)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Board{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Board{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return domain.Board{}, app.ErrNotFound
	}
	var board domain.Board
	if err := json.Unmarshal(b, &board); err != nil {
		return domain.Board{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return board, nil
}

// Save writes the record for key through a temp file and rename.
func (s *Store) Save(ctx context.Context, key string, board domain.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create jsonfile dir: %w", err)
	}
	if board.Columns == nil {
		board.Columns = []domain.Column{}
	}
	if board.Tasks == nil {
		board.Tasks = []domain.Task{}
	}
	b, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}

	path := s.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// UpdatedAt returns the modification time of the file backing key.
func (s *Store) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	path := s.Path(key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, app.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime().UTC(), nil
}

// fileStem keeps keys filesystem-safe.
func fileStem(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if out == "" {
		return app.DefaultStorageKey
	}
	return out
}
