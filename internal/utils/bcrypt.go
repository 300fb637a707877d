package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCode hashes a secret (such as a one-time passcode) for storage
func HashCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(bytes), nil
}

// CheckCodeHash compares a plain code with its stored hash
func CheckCodeHash(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}
