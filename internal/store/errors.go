package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IsUniqueViolation reports whether err looks like a unique-constraint
// violation. Both lib/pq ("duplicate key value violates unique
// constraint") and sqlite ("UNIQUE constraint failed") carry the word
// in their messages; the schema constraint is the backstop for the
// non-atomic check-then-insert in registration.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
