package service

import "errors"

// ValidationError reports client input that cannot be accepted. Its message
// is safe to return to the caller.
type ValidationError struct {
	message string
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(message string) ValidationError {
	return ValidationError{message: message}
}

func (e ValidationError) Error() string {
	return e.message
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
