// Package uuid provides UUID generation with a focus on UUIDv7 (time-ordered
// UUIDs). It wraps github.com/google/uuid and sets version 7 as the default.
package uuid

import (
	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// Nil is the zero UUID.
var Nil = uuid.Nil

// New returns a new random UUIDv7. Panics if UUID generation fails.
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// NewRandom returns a new random UUIDv7 and any error encountered during generation.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// Parse parses a UUID string into a UUID value. Returns an error if the string is not a valid UUID.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
