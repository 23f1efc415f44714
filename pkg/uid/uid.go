package uid

import (
	"regexp"

	"github.com/google/uuid"
)

var accountIDPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsAccountID reports whether s is already a platform account id: exactly 32
// lowercase hex characters.
func IsAccountID(s string) bool {
	return accountIDPattern.MatchString(s)
}
