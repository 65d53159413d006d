// Package apperr holds the error taxonomy shared by core services. Handlers
// map these to HTTP responses; services never return raw gorm or fmt errors
// across the boundary.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError rejects a command before any state mutation. Field names
// the offending input, Reason states the violated rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError rejects an operation the actor lacks capability for.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// Authorization builds an AuthorizationError.
func Authorization(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// InvariantError reports derived state that valid operations can never
// produce (e.g. negative available rounds). It signals upstream data
// corruption and is logged distinctly from validation failures.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Detail
}

// Invariant builds an InvariantError.
func Invariant(format string, args ...interface{}) error {
	return &InvariantError{Detail: fmt.Sprintf(format, args...)}
}

// ErrConcurrentModification is returned when a version-guarded write finds
// the record changed since it was read. Callers re-read and retry.
var ErrConcurrentModification = errors.New("record was modified concurrently, reload and retry")

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
