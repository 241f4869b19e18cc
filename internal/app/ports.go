package app

import (
	"context"
	"time"

	"github.com/evanschultz/kanboard/internal/domain"
)

// Persister stores one named board record.
// Load returns ErrNotFound when no record exists under key.
type Persister interface {
	Load(ctx context.Context, key string) (domain.Board, error)
	Save(ctx context.Context, key string, board domain.Board) error
}

// RecordClock is implemented by persisters that track when a record was last written.
// UpdatedAt returns ErrNotFound when no record exists under key.
type RecordClock interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
