// Package utils holds small helpers shared across layers.
package utils

import "github.com/google/uuid"

// NewID returns a fresh time-sortable identifier (UUIDv7).  Generation can
// only fail when the system entropy source is broken, in which case
// nothing else works either, so the error is treated as fatal.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
