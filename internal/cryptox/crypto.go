// Package cryptox hashes and verifies account passwords with argon2id.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gophshare/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// NewSalt returns a fresh random salt for HashPassword.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives a 32-byte argon2id key from password and salt.
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// VerifyPassword recomputes the hash and compares it in constant time.
func VerifyPassword(password, salt, hash []byte) bool {
	got := HashPassword(password, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, hash) == 1
}
