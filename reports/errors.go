package reports

import (
	"errors"
	"fmt"
)

// ErrUnauthorized means no authenticated actor was presented. Never
// retried; handlers surface it as 401.
var ErrUnauthorized = errors.New("authentication required")

// ErrNotFound means the identifier resolved to no report. Surfaced as 404.
var ErrNotFound = errors.New("report not found")

// ValidationError is a bad or missing input. Never retried; surfaced as
// 400 with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validationErrf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
