package patient

import "errors"

var (
	ErrNotFound     = errors.New("patient not found")
	ErrForbidden    = errors.New("access denied to this patient record")
	ErrDuplicateCPF = errors.New("a patient with this CPF already exists in the unit")
	// ErrCPFDisabled is returned when a CPF is sent but no encryption key is
	// configured.
	ErrCPFDisabled = errors.New("CPF storage is not configured")
)
