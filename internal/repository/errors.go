package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrForbidden is returned when the caller does not own the resource.
var ErrForbidden = errors.New("forbidden")

// NotFoundError is an error type for when a resource is not found.
type NotFoundError struct {
	message string
}

// NewNotFoundError creates a NotFoundError with the given message.
func NewNotFoundError(message string) NotFoundError {
	return NotFoundError{message: message}
}

// Error returns the error message.
func (e NotFoundError) Error() string {
	return e.message
}

// ConflictError is an error type for when a resource already exists.
type ConflictError struct {
	message string
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) ConflictError {
	return ConflictError{message: message}
}

// Error returns the error message.
func (e ConflictError) Error() string {
	return e.message
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is, or wraps, a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally on a constraint whose name mentions hint.
func isUniqueViolation(err error, hint string) bool {
	if err == nil {
		return false
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return hint == "" || strings.Contains(pgErr.Error(), hint) || strings.Contains(pgErr.Constraint, hint)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return hint == "" || strings.Contains(err.Error(), hint)
	}
	return false
}

// translateNotFound turns gorm.ErrRecordNotFound into a NotFoundError.
func translateNotFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError{message: message}
	}
	return err
}
