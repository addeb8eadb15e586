package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Callers match them with errors.Is; details travel in the
// wrapping message.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrNoAttendingAvailable = errors.New("no doctor available")
	ErrStorageFailure       = errors.New("storage failure")

	// validation sub-kinds
	ErrInvalidDate = fmt.Errorf("invalid date: %w", ErrValidation)
	ErrInvalidTime = fmt.Errorf("invalid time: %w", ErrValidation)
	ErrWeakInput   = fmt.Errorf("password too short: %w", ErrValidation)
)

// ValidationError carries a client-facing message for a rejected input.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError names the roles that would have been accepted.
type ForbiddenError struct {
	Required []Role
	Current  Role
}

func (e *ForbiddenError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return "requires role " + strings.Join(names, " or ")
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// Storage wraps a collaborator error as a StorageFailure.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}

func IsStorage(err error) bool { return errors.Is(err, ErrStorageFailure) }
