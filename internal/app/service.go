package app

import (
	"context"

	"github.com/evanschultz/kanboard/internal/domain"
)

// Service bundles the store with its drag controller and edit policy.
// Every presentation drives the board through one Service.
type Service struct {
	*Store
	drag *DragController
}

// NewService constructs a new value for this package.
func NewService(store *Store) *Service {
	return &Service{
		Store: store,
		drag:  NewDragController(store),
	}
}

// CommitColumnEdit applies the inline edit policy to a column title.
func (s *Service) CommitColumnEdit(ctx context.Context, id, raw string) (bool, error) {
	return CommitColumnEdit(ctx, s.Store, id, raw)
}

// CommitTaskEdit applies the inline edit policy to task content.
func (s *Service) CommitTaskEdit(ctx context.Context, id, raw string) (bool, error) {
	return CommitTaskEdit(ctx, s.Store, id, raw)
}

// DragStart begins a drag gesture.
func (s *Service) DragStart(item domain.DragItem) (Overlay, bool) {
	return s.drag.DragStart(item)
}

// DragOver forwards a hover event to the drag controller.
func (s *Service) DragOver(ctx context.Context, active domain.DragItem, over *domain.DragItem) error {
	return s.drag.DragOver(ctx, active, over)
}

// DragEnd forwards a drop event to the drag controller.
func (s *Service) DragEnd(ctx context.Context, active domain.DragItem, over *domain.DragItem) error {
	return s.drag.DragEnd(ctx, active, over)
}

// CancelDrag abandons the current gesture.
func (s *Service) CancelDrag() {
	s.drag.Cancel()
}

// ActiveDrag returns the item currently being dragged.
func (s *Service) ActiveDrag() (domain.DragItem, bool) {
	return s.drag.Active()
}
