package unit

import "errors"

var (
	ErrNotFound       = errors.New("unit not found")
	ErrForbidden      = errors.New("not allowed to manage units")
	ErrMemberNotFound = errors.New("user is not a member of this unit")
)
