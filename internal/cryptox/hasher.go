// Package cryptox implements the salted, adaptive one-way hashes used to
// store the account PIN. Every hash embeds its own salt and parameters, so a
// stored hash can be verified without knowing which Hasher produced it.
package cryptox

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pinledger/internal/common"
)

// Algorithm names accepted in configuration.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hasher produces and checks encoded credential hashes.
//
// Hash must draw a fresh random salt on every call. Verify must use a
// constant-time comparison and must return false, never panic, for a
// malformed hash.
type Hasher interface {
	Hash(secret []byte) (string, error)
	Verify(encoded string, candidate []byte) bool
}

// NewHasher returns the Hasher configured by name. cost is only used by bcrypt.
func NewHasher(algorithm string, cost int) (Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt, "":
		return NewBcryptHasher(cost), nil
	case AlgorithmArgon2id:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownHashAlgorithm, algorithm)
	}
}

// Verify checks candidate against an encoded hash of any supported algorithm,
// choosing the verifier from the hash prefix.
func Verify(encoded string, candidate []byte) bool {
	switch {
	case encoded == "":
		return false
	case strings.HasPrefix(encoded, argon2Prefix):
		return NewArgon2Hasher().Verify(encoded, candidate)
	case isBcryptHash(encoded):
		return NewBcryptHasher(0).Verify(encoded, candidate)
	default:
		return false
	}
}

// Recognized reports whether encoded is a well-formed hash this package can
// verify, with parameters inside the limits Verify is willing to run.
func Recognized(encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		_, err := parseArgon2(encoded)
		return err == nil
	case isBcryptHash(encoded):
		return validBcryptHash(encoded)
	default:
		return false
	}
}
