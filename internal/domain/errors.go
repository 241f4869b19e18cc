package domain

import "errors"

// Sentinel errors returned by domain constructors and validators.
var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrInvalidKind     = errors.New("invalid drag kind")
	ErrDuplicateID     = errors.New("duplicate id")
)
