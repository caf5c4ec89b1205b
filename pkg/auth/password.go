// Package auth provides password hashing helpers built on bcrypt.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/orderdesk/config"
)

// HashPassword returns a bcrypt hash of p using the configured work factor.
func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), config.BcryptCost())
	return string(b), err
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
