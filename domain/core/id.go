package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one residual-computation or ranking invocation.
	RunID ID
	// EventKey identifies one earthquake event group within a flatfile:
	// either the declared event id or the surrogate location/time tuple.
	EventKey string
	// ModelName is the canonical name of a ground-motion model handle.
	ModelName string
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (k EventKey) String() string  { return string(k) }
func (m ModelName) String() string { return string(m) }

// NewRunID creates a fresh run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseModelName parses a string into ModelName
func ParseModelName(s string) (ModelName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	return ModelName(strings.TrimSpace(s)), nil
}
