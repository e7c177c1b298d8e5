// Package phone validates and normalizes contact numbers to E.164.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/equidadeplus/equidade_backend/pkg/constants"
)

var ErrInvalid = errors.New("invalid phone number")

// Normalize parses raw (national numbers are read as Brazilian) and returns
// it in E.164. Empty input yields an empty string and no error.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, constants.PhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsMobile reports whether an E.164 number can receive SMS.
func IsMobile(e164 string) bool {
	num, err := phonenumbers.Parse(e164, constants.PhoneRegion)
	if err != nil {
		return false
	}
	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true
	default:
		return false
	}
}
