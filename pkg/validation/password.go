package validation

import (
	"strconv"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// PasswordValidity is the result of a policy check.
type PasswordValidity struct {
	Valid   bool
	Message string
}

// ValidatePassword applies the password policy uniformly at signup, password
// change and recovery reset.
func ValidatePassword(password string) PasswordValidity {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return PasswordValidity{
			Valid:   false,
			Message: "Password must be > " + strconv.Itoa(MinPasswordLength-1) + " characters",
		}
	}
	return PasswordValidity{Valid: true}
}
