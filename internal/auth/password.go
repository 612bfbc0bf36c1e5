package auth

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ErrWeakPassword is returned when a password is too short or not valid UTF-8.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// HashPassword validates and bcrypt-hashes a password.
func HashPassword(password string) (string, error) {
	if len(strings.TrimSpace(password)) < MinPasswordLength || !utf8.ValidString(password) {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
