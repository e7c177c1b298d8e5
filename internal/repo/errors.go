package repo

import (
	"errors"

	"github.com/lib/pq"
)

// ErrStaleVersion is returned when an optimistic update matched no row at the
// expected version.
var ErrStaleVersion = errors.New("repo: stale version")

// NotFoundError returns when trying to fetch a specific entity and it was not found in the database.
type NotFoundError struct {
	label string
}

func (e *NotFoundError) Error() string {
	return "repo: " + e.label + " not found"
}

// NewNotFoundError builds the error Get methods return for a missing row.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// IsNotFound returns a boolean indicating whether the error is a not found error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e)
}

// ConstraintError returns when trying to create/update one or more entities and
// one or more of their constraints failed.
type ConstraintError struct {
	msg  string
	wrap error
}

func (e ConstraintError) Error() string {
	return "repo: constraint failed: " + e.msg
}

func (e *ConstraintError) Unwrap() error {
	return e.wrap
}

// IsConstraintError returns a boolean indicating whether the error is a constraint failure.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConstraintError
	return errors.As(err, &e)
}

// wrapConstraint converts Postgres integrity violations into ConstraintError.
func wrapConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return &ConstraintError{msg: pqErr.Message, wrap: err}
	}
	return err
}
