package accounts

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a salted password hash. The cost is deliberately
// high; hashing is the expensive step that makes brute force unattractive.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password against
// the hashed password in constant time. A malformed hash verifies as a
// mismatch, never as a panic or success.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// bcrypt.ErrHashTooShort and friends land here too: a hash we
		// cannot parse is a mismatch, not an internal error.
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
