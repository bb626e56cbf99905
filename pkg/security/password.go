package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/nilecommerce/admin-service/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// Hashes are self-describing so parameters can be tuned without invalidating
// stored credentials: $argon2id$v=19$m=<kb>,t=<n>,p=<n>$<salt>$<key>
const hashFormat = "$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s"

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen uint32
	keyLen  uint32
}

func boundedParams(cfg config.PasswordConfig) argonParams {
	bound := func(v, lo, hi int) uint32 {
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		return uint32(v)
	}
	return argonParams{
		memory:  bound(cfg.ArgonMemoryKB, 8, 512*1024),
		time:    bound(cfg.ArgonTime, 1, 10),
		threads: uint8(bound(cfg.ArgonParallelism, 1, 255)),
		saltLen: bound(cfg.ArgonSaltLen, 8, 64),
		keyLen:  bound(cfg.ArgonKeyLen, 16, 64),
	}
}

// HashPassword derives an Argon2id hash of password under the configured
// parameters, with a fresh random salt.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	p := boundedParams(cfg)
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf(hashFormat,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword recomputes the hash with the parameters embedded in encoded
// and compares in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var p argonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return false, ErrInvalidHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// GenerateToken produces a random hex string for email verification and
// password reset links.
func GenerateToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", errors.New("token length must be positive")
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
