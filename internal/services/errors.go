package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the account and task services. Handlers map
// every one of these to a redirect plus a user-visible notice; nothing
// here propagates as an unhandled fault.
var (
	// ErrAlreadyExists reports a registration collision on username.
	ErrAlreadyExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned uniformly for an unknown
	// username and for a wrong password, so login failures cannot be
	// used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound reports that the referenced task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrForbidden reports that the caller does not own the task.
	ErrForbidden = errors.New("not the task owner")

	// ErrStoreUnavailable reports that the persistence layer could not
	// serve the request. Read paths degrade to an empty result, write
	// paths roll back.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError names the malformed or missing input field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q", e.Field)
}

func invalidField(field string) error {
	return &ValidationError{Field: field}
}
