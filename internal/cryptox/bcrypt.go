package cryptox

import (
	"strings"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently ignores everything past this many bytes.
const bcryptMaxSecretLen = 72

// Length of every encoded bcrypt hash: prefix, cost, 22-char salt, 31-char key.
const bcryptHashLen = 60

// BcryptHasher is the default Hasher; it is the algorithm the ledger has
// always stored PINs with, so existing data files keep verifying.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt Hasher. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret []byte) (string, error) {
	if len(secret) > bcryptMaxSecretLen {
		return "", common.ErrSecretTooLong
	}
	b, err := bcrypt.GenerateFromPassword(secret, h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(encoded string, candidate []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), candidate) == nil
}

func isBcryptHash(encoded string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, p) {
			return true
		}
	}
	return false
}

// validBcryptHash checks the length and that the cost field parses and is in range.
func validBcryptHash(encoded string) bool {
	if len(encoded) != bcryptHashLen {
		return false
	}
	_, err := bcrypt.Cost([]byte(encoded))
	return err == nil
}
