package notification

import "errors"

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("not allowed to read notifications")
)
