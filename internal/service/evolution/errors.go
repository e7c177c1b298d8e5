package evolution

import "errors"

var (
	ErrNotFound           = errors.New("evolution not found")
	ErrForbidden          = errors.New("not allowed to act on this evolution")
	ErrAlreadyExists      = errors.New("appointment already has an evolution")
	ErrInvalidTransition  = errors.New("transition not allowed from the current status")
	ErrNotEditable        = errors.New("only drafts can be edited")
	ErrSelfSupervision    = errors.New("supervisors cannot review their own evolutions")
	ErrConflict           = errors.New("evolution was modified by someone else, reload and try again")
	ErrNotFinalized       = errors.New("only finalized evolutions can be exported")
	ErrTooManyAttachments = errors.New("attachment limit reached")
)
