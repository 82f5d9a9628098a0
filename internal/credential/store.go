// Package credential owns the account PIN hash. It never stores the PIN
// itself: Set hashes and forgets, Verify recomputes and compares.
package credential

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/cryptox"
)

// Store holds the current credential hash. The zero hash means Uninitialized.
// A Store is not safe for concurrent use; the session gate serialises access.
type Store struct {
	hasher cryptox.Hasher
	hash   string
}

// NewStore returns a Store that hashes new PINs with hasher and starts from
// an existing encoded hash, or from "" for an Uninitialized account.
func NewStore(hasher cryptox.Hasher, hash string) *Store {
	return &Store{hasher: hasher, hash: hash}
}

// Set replaces the credential with a fresh salted hash of newSecret.
// It fails with common.ErrMismatch, leaving the old hash in place, when the
// confirmation differs. The caller keeps ownership of both slices and
// should wipe them.
func (s *Store) Set(newSecret, confirmSecret []byte) error {
	if subtle.ConstantTimeCompare(newSecret, confirmSecret) != 1 {
		return common.ErrMismatch
	}
	if len(newSecret) == 0 {
		return common.ErrEmptySecret
	}

	hash, err := s.hasher.Hash(newSecret)
	if err != nil {
		return err
	}
	s.hash = hash
	return nil
}

// Verify reports whether candidate matches the stored credential.
// It fails closed: with no credential set it is always false.
func (s *Store) Verify(candidate []byte) bool {
	if s.hash == "" {
		return false
	}
	return cryptox.Verify(s.hash, candidate)
}

// IsSet reports whether the account has left the Uninitialized state.
func (s *Store) IsSet() bool {
	return s.hash != ""
}

// Hash returns the encoded hash for persistence.
func (s *Store) Hash() string {
	return s.hash
}

// Clone returns an independent copy, used to stage a credential change
// until it has been persisted.
func (s *Store) Clone() *Store {
	cp := *s
	return &cp
}
