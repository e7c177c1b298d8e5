package appointment

import "errors"

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrForbidden        = errors.New("not allowed to manage appointments")
	ErrSlotTaken        = errors.New("therapist already has an appointment in this time slot")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
)
