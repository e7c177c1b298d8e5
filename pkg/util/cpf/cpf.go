// Package cpf validates Brazilian individual taxpayer numbers.
package cpf

import (
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid CPF")

// Normalize strips punctuation and checks both verifier digits. It returns
// the bare 11 digits.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", ErrInvalid
		}
	}
	digits := b.String()
	if len(digits) != 11 || allSame(digits) {
		return "", ErrInvalid
	}
	if checkDigit(digits[:9], 10) != digits[9] || checkDigit(digits[:10], 11) != digits[10] {
		return "", ErrInvalid
	}
	return digits, nil
}

// Format renders 11 digits as 000.000.000-00.
func Format(digits string) string {
	if len(digits) != 11 {
		return digits
	}
	return digits[:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
}

func checkDigit(prefix string, weight int) byte {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (weight - i)
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		rem = 0
	}
	return byte('0' + rem)
}

func allSame(s string) bool {
	return strings.Count(s, s[:1]) == len(s)
}
