package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pinledger/internal/common"
	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

// Limits on parameters read from a stored hash.
const (
	argon2MaxMemory  = 256 * 1024 // KiB
	argon2MaxTime    = 16
	argon2MinSaltLen = 8
	argon2MinKeyLen  = 16
	argon2MaxKeyLen  = 64
)

// Argon2Hasher hashes with argon2id and encodes the result in the PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

// NewArgon2Hasher returns an argon2id Hasher with the same parameters the
// vault key derivation used: t=1, m=64MiB, p=4, 32-byte key.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32, saltLen: 16}
}

func (h *Argon2Hasher) Hash(secret []byte) (string, error) {
	salt := common.GenerateRandByteArray(h.saltLen)
	key := argon2.IDKey(secret, salt, h.time, h.memory, h.threads, h.keyLen)
	defer common.WipeByteArray(key)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, h.memory, h.time, h.threads,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

// Verify recomputes the key with the parameters and salt stored in encoded,
// so hashes made with other parameters still verify. Hashes whose
// parameters exceed the package limits never verify.
func (h *Argon2Hasher) Verify(encoded string, candidate []byte) bool {
	p, err := parseArgon2(encoded)
	if err != nil {
		return false
	}
	got := argon2.IDKey(candidate, p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, p.key) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2(encoded string) (*argon2Params, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, fmt.Errorf("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("argon2id version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, fmt.Errorf("argon2id params: %w", err)
	}

	enc := base64.RawStdEncoding
	var err error
	if p.salt, err = enc.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("argon2id salt: %w", err)
	}
	if p.key, err = enc.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("argon2id key: %w", err)
	}
	if p.time == 0 || p.threads == 0 || p.memory == 0 {
		return nil, fmt.Errorf("malformed argon2id hash")
	}
	if p.memory > argon2MaxMemory || p.time > argon2MaxTime {
		return nil, fmt.Errorf("argon2id params out of range: m=%d,t=%d", p.memory, p.time)
	}
	if len(p.salt) < argon2MinSaltLen || len(p.key) < argon2MinKeyLen || len(p.key) > argon2MaxKeyLen {
		return nil, fmt.Errorf("argon2id salt or key length out of range")
	}
	return p, nil
}
