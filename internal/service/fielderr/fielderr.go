// Package fielderr collects field-level validation failures so a request
// can report every problem at once.
package fielderr

import (
	"errors"
	"sort"
	"strings"
)

// Error maps a field name to a human readable message.
type Error struct {
	Fields map[string]string
}

func New() *Error {
	return &Error{Fields: map[string]string{}}
}

// Single is shorthand for an error on one field.
func Single(field, msg string) error {
	return New().Add(field, msg).Err()
}

// Add records msg for field. The first message for a field wins.
func (e *Error) Add(field, msg string) *Error {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
	return e
}

// Require adds msg when value is blank.
func (e *Error) Require(field, value, msg string) *Error {
	if strings.TrimSpace(value) == "" {
		e.Add(field, msg)
	}
	return e
}

// Err returns nil when nothing was recorded.
func (e *Error) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// As extracts the field map from err, if it carries one.
func As(err error) (map[string]string, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Fields, true
	}
	return nil, false
}
