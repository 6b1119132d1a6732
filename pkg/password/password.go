package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinLength matches the signup validation rule; enforced here so every
// hashing call site gets the same floor.
const MinLength = 6

var ErrTooShort = errors.New("password too short")

// Hash bcrypt-hashes a plaintext password with the default cost.
func Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", ErrTooShort
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches the stored bcrypt hash.
func Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
