package database

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen      = 16
	keyLen       = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// HashPassword derives an argon2id key from password with a fresh random salt.
func HashPassword(password string) (hash, salt []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	return deriveKey(password, salt), salt, nil
}

// VerifyPassword reports whether password hashes to hash under salt.
func VerifyPassword(password string, hash, salt []byte) bool {
	return subtle.ConstantTimeCompare(deriveKey(password, salt), hash) == 1
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
}
