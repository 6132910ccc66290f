package store

import (
	"errors"
	"fmt"
)

// ValidationError marks request-shaped failures (bad folder, filename or
// object location) so handlers can answer 400 instead of 502.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err originates from input validation
// rather than the storage backend.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
