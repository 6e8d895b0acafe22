package utils

import (
	"regexp"

	"github.com/counselnote/counsel-api/internal/model"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordChars = regexp.MustCompile(`^[A-Za-z\d]{8,}$`)
	hasLetter     = regexp.MustCompile(`[A-Za-z]`)
	hasDigit      = regexp.MustCompile(`\d`)
)

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword requires at least 8 letters/digits with at least one of each.
// Login is code-only, so this only guards the password column should one be added.
func ValidatePassword(password string) bool {
	return passwordChars.MatchString(password) && hasLetter.MatchString(password) && hasDigit.MatchString(password)
}

// ValidateRole reports whether role is client or counselor.
func ValidateRole(role string) bool {
	return model.Role(role).Valid()
}
