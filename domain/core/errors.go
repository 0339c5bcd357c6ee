package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
//
// Configuration errors abort a whole computation and surface to the caller
// unmodified. Per-pair soft failures and numeric degeneracies are never
// represented as errors: they appear as missing columns or NaN entries in
// the output table.
var (
	// Configuration errors
	ErrInvalidModel  = errors.New("unrecognized or incompatible ground-motion model")
	ErrInvalidIMT    = errors.New("unrecognized intensity measure")
	ErrMissingColumn = errors.New("flatfile missing required column")
	ErrBadConfig     = errors.New("invalid engine configuration")

	// Data errors
	ErrEmptyFlatfile = errors.New("flatfile has no rows")
	ErrColumnLength  = errors.New("column length does not match flatfile row count")
)

// Error constructors with context
func NewInvalidModelError(name string) error {
	return fmt.Errorf("%w: %q", ErrInvalidModel, name)
}

func NewInvalidIMTError(name string) error {
	return fmt.Errorf("%w: %q", ErrInvalidIMT, name)
}

func NewMissingColumnError(names ...string) error {
	return fmt.Errorf("%w: %v", ErrMissingColumn, names)
}

func NewBadConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrBadConfig, field, reason)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrInvalidIMT) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrBadConfig)
}
