// Package apperr defines the error kinds shared by the catalog services.
// Domain packages wrap these kinds so the HTTP layer can map any error to a
// status code with errors.Is and errors.As.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAuthRequired     = errors.New("authentication required")
	ErrIntegrity        = errors.New("integrity violation")
	ErrConflict         = errors.New("conflict")
)

// Error carries a human readable message on top of one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// New returns an error of the given kind with a custom message.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Integrity builds an ErrIntegrity error, e.g. for a violated constraint.
func Integrity(msg string) error {
	return New(ErrIntegrity, msg)
}

// ValidationError collects per-field messages. Field names are the JSON names.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidation() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is a shortcut for a validation error on a single field.
func FieldError(field, msg string) error {
	v := NewValidation()
	v.Add(field, msg)
	return v
}

func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Err returns nil when nothing was added so callers can `return v.Err()`.
func (v *ValidationError) Err() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
