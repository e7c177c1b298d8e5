package file

import "errors"

var (
	ErrNotFound        = errors.New("attachment not found")
	ErrTooLarge        = errors.New("file exceeds the upload limit")
	ErrUnsupportedType = errors.New("file type is not accepted")
	ErrDisabled        = errors.New("file storage is not configured")
)
