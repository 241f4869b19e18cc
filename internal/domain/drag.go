package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DragKind tags what a drag payload refers to.
type DragKind string

// DragKindColumn and DragKindTask are the two draggable shapes.
const (
	DragKindColumn DragKind = "column"
	DragKindTask   DragKind = "task"
)

// DragItem identifies one draggable or droppable element.
type DragItem struct {
	Kind DragKind `json:"kind"`
	ID   string   `json:"id"`
}

// ColumnItem builds a column drag payload.
func ColumnItem(id string) DragItem {
	return DragItem{Kind: DragKindColumn, ID: id}
}

// TaskItem builds a task drag payload.
func TaskItem(id string) DragItem {
	return DragItem{Kind: DragKindTask, ID: id}
}

// ParseDragKind normalizes a textual kind.
func ParseDragKind(raw string) (DragKind, error) {
	switch DragKind(strings.ToLower(strings.TrimSpace(raw))) {
	case DragKindColumn:
		return DragKindColumn, nil
	case DragKindTask:
		return DragKindTask, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
	}
}

// Normalize returns the item with a canonical kind and a trimmed id.
func (d DragItem) Normalize() (DragItem, error) {
	kind, err := ParseDragKind(string(d.Kind))
	if err != nil {
		return DragItem{}, err
	}
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return DragItem{}, ErrInvalidID
	}
	return DragItem{Kind: kind, ID: id}, nil
}

// Validate checks the tag and id.
func (d DragItem) Validate() error {
	_, err := d.Normalize()
	return err
}

// UnmarshalJSON accepts any casing or padding of the kind tag and stores the canonical form.
// An unknown kind is kept verbatim so Validate can reject it.
func (d *DragItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	d.Kind = DragKind(raw.Kind)
	if kind, err := ParseDragKind(raw.Kind); err == nil {
		d.Kind = kind
	}
	d.ID = strings.TrimSpace(raw.ID)
	return nil
}

// Same reports whether two payloads refer to the same element.
// Columns and tasks live in separate id spaces, so the kind must match too.
func (d DragItem) Same(other DragItem) bool {
	return d.Kind == other.Kind && d.ID == other.ID
}
