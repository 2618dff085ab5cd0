package pkg

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost used by HashPassword. Tests lower it.
var PasswordHashCost = 14

// HashPassword returns the bcrypt hash of password. Passwords over 72 bytes are rejected by bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
