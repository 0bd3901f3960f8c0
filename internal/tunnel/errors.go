package tunnel

import (
	"errors"
	"fmt"
	"strings"
)

// State errors returned by the session lifecycle methods.
var (
	ErrAlreadyRunning = errors.New("tunnel is already running")
	ErrNotRunning     = errors.New("tunnel is not running")
)

// ErrNoTunnels is returned when a session is started, or a batch is
// registered, without any tunnel definitions.
var ErrNoTunnels = &ValidationError{
	Subject: "tunnels",
	Fields:  []FieldError{{Field: "tunnels", Message: "at least one tunnel is required"}},
}

// FieldError describes one invalid field of a definition.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError lists every invalid field of a rejected definition.
type ValidationError struct {
	Subject string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) hasErrors() bool {
	return len(e.Fields) > 0
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
