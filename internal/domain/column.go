package domain

import (
	"fmt"
	"strings"
)

// Column represents one titled bucket of tasks; its board position is its index in the column sequence.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NewColumn constructs a new value for this package.
func NewColumn(id, title string) (Column, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	return Column{
		ID:    id,
		Title: title,
	}, nil
}

// Rename replaces the column title in place.
func (c *Column) Rename(title string) {
	c.Title = title
}

// DefaultColumnTitle names a new column when the user leaves the title blank.
// count is the number of columns before the addition.
func DefaultColumnTitle(count int) string {
	return fmt.Sprintf("Column %d", count+1)
}
