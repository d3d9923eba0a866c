package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error reports malformed caller input along with the offending field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewError builds a field-scoped validation error.
func NewError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a validation error from an error chain.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// RequiredString trims the value and enforces presence and a maximum length.
func RequiredString(value, field string, maxLength int) (string, error) {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return "", NewError(field, "%s is required", field)
	}
	if maxLength > 0 && len(normalized) > maxLength {
		return "", NewError(field, "%s must be at most %d characters", field, maxLength)
	}
	return normalized, nil
}

// OptionalString trims the value and enforces a maximum length when present.
func OptionalString(value, field string, maxLength int) (string, error) {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return "", nil
	}
	if maxLength > 0 && len(normalized) > maxLength {
		return "", NewError(field, "%s must be at most %d characters", field, maxLength)
	}
	return normalized, nil
}
