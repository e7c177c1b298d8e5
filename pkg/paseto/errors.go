package pasetotoken

import "fmt"

// ErrConfig reports unusable key material or settings; it is raised at
// startup, never per request.
type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

// ErrInvalidToken wraps every parse, signature or claim failure.
type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }
