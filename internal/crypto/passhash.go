// Package crypto hashes user secrets with argon2id.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// SaltLen is the length of a freshly generated salt.
const SaltLen = 16

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashKey returns the Argon2id hash of key using the provided salt.
func HashKey(key, salt []byte) []byte {
	return argon2.IDKey(key, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// NewKey hashes key under a new random salt.
func NewKey(key string) (hash, salt []byte, err error) {
	salt, err = RandBytes(SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return HashKey([]byte(key), salt), salt, nil
}

// VerifyKey verifies key against the stored hash and salt.
func VerifyKey(key, salt, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	got := HashKey(key, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
