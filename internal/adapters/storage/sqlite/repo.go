package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository persists named board records in a key/value table.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ app.Persister   = (*Repository)(nil)
	_ app.RecordClock = (*Repository)(nil)
)

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS kv_store (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Load reads and decodes the board stored under key.
func (r *Repository) Load(ctx context.Context, key string) (domain.Board, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE name = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Board{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Board{}, fmt.Errorf("read record %q: %w", key, err)
	}
	var board domain.Board
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		return domain.Board{}, fmt.Errorf("decode record %q: %w", key, err)
	}
	return board, nil
}

// Save encodes board and upserts it under key.
func (r *Repository) Save(ctx context.Context, key string, board domain.Board) error {
	if board.Columns == nil {
		board.Columns = []domain.Column{}
	}
	if board.Tasks == nil {
		board.Tasks = []domain.Task{}
	}
	encoded, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO kv_store(name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(encoded), ts(r.now()))
	if err != nil {
		return fmt.Errorf("write record %q: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when the record under key was last written.
func (r *Repository) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM kv_store WHERE name = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, app.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read record %q: %w", key, err)
	}
	return parseTS(raw), nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
