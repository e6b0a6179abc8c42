// Package password hashes the admin credential stored in the config
// file. Only bcrypt hashes are accepted there, never plain text.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// Hash produces a bcrypt hash suitable for the admin.password_hash
// config field.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored hash. A nil return
// means a match.
func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
