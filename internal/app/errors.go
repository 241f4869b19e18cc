package app

import "errors"

// ErrNotFound and related errors describe lookup and persistence failures.
var (
	ErrNotFound     = errors.New("not found")
	ErrPersist      = errors.New("persist board")
	ErrInvalidBoard = errors.New("invalid board document")
)
