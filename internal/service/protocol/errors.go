package protocol

import "errors"

var (
	ErrUnknownProtocol = errors.New("unknown protocol")
	ErrTotalOutOfRange = errors.New("total score falls outside every classification band")
	ErrInvalidCatalog  = errors.New("invalid protocol definition")
	ErrPatientNotFound = errors.New("patient not found")
	ErrForbidden       = errors.New("not allowed to record assessments")
)
