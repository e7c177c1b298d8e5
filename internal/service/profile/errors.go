package profile

import "errors"

var (
	ErrNotFound       = errors.New("user not found")
	ErrForbidden      = errors.New("not allowed to manage this user")
	ErrAlreadyExists  = errors.New("a user with this id or email already exists")
	ErrSelfDeactivate = errors.New("cannot deactivate your own account")
)
