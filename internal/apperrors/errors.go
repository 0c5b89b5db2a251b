// Package apperrors defines the error kinds every public operation of the
// core returns. Callers classify with errors.Is and surface the message
// verbatim to the acting user.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap them with fmt.Errorf("...: %w", kind) so both
// the kind and the human-readable detail survive propagation.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Validationf wraps ErrValidation with a formatted message
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidStatef wraps ErrInvalidState with a formatted message
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// InvalidTransitionf wraps ErrInvalidTransition with a formatted message
func InvalidTransitionf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidTransition)...)
}

// Conflictf wraps ErrConflict with a formatted message
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// PermissionDeniedf wraps ErrPermissionDenied with a formatted message
func PermissionDeniedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrPermissionDenied)...)
}
