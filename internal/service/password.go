package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plain password against a stored hash.
type PasswordVerifier interface {
	Verify(hash, password string) bool
}

// BcryptVerifier matches bcrypt hashes.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword returns the bcrypt hash stored for new accounts.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
