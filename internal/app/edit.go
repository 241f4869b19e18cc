package app

import (
	"context"
	"strings"

	"github.com/evanschultz/kanboard/internal/domain"
)

// CommitColumnEdit applies an inline title edit. The raw value is trimmed and an
// empty result reverts to the previous title. It reports whether the title changed.
func CommitColumnEdit(ctx context.Context, store *Store, id, raw string) (bool, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return false, nil
	}
	return store.mutateBoard(ctx, func(b *domain.Board) bool {
		idx := b.ColumnIndex(id)
		if idx < 0 || b.Columns[idx].Title == title {
			return false
		}
		b.Columns[idx].Rename(title)
		return true
	})
}

// CommitTaskEdit applies an inline content edit with the same trim-or-revert rule.
func CommitTaskEdit(ctx context.Context, store *Store, id, raw string) (bool, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return false, nil
	}
	return store.mutateBoard(ctx, func(b *domain.Board) bool {
		idx := b.TaskIndex(id)
		if idx < 0 || b.Tasks[idx].Content == content {
			return false
		}
		b.Tasks[idx].Edit(content)
		return true
	})
}
