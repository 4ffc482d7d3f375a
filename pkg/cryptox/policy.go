package cryptox

import (
	"errors"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ErrWeakPassword is returned when a password does not meet the strength policy.
var ErrWeakPassword = errors.New(
	"cryptox: password must be at least 8 characters with upper, lower, digit and symbol",
)

// ValidatePasswordStrength enforces the registration password policy:
// at least MinPasswordLength characters containing an uppercase letter,
// a lowercase letter, a digit and a symbol.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	if !upper || !lower || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}
