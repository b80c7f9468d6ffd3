package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

const (
	// HMACEnvKey is the env var name for the token HMAC secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	HMACEnvKey = "PLACEMATE_TOKEN_HMAC_KEY"
)

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashHMACSHA256Hex returns an HMAC-SHA256 hex digest of s using key.
func HashHMACSHA256Hex(s string, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(s))
	return hex.EncodeToString(m.Sum(nil))
}

// Hasher hashes refresh tokens for server-side storage. The zero value
// (no key) hashes with plain SHA-256, which is fine for dev; production
// deployments set an HMAC key so stored digests are useless without it.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher using key, or SHA-256 mode when key is empty.
func NewHasher(key []byte) Hasher {
	return Hasher{key: key}
}

// HasherFromEnv builds a Hasher from PLACEMATE_TOKEN_HMAC_KEY.
// A missing/blank key yields SHA-256 mode; a present key shorter than
// minBytes is rejected.
func HasherFromEnv(minBytes int) (Hasher, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return Hasher{}, nil
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return Hasher{}, ErrHMACKeyTooShort
	}
	return Hasher{key: b}, nil
}

// HMACEnabled reports whether an HMAC key is configured.
func (h Hasher) HMACEnabled() bool {
	return len(h.key) > 0
}

// Hash returns the stable 64-char hex digest of token.
func (h Hasher) Hash(token string) string {
	if len(h.key) == 0 {
		return HashSHA256Hex(token)
	}
	return HashHMACSHA256Hex(token, h.key)
}

// RequireHMACKey enforces that an HMAC key of at least minBytes is
// configured. Used at startup when the deployment policy demands HMAC.
func (h Hasher) RequireHMACKey(minBytes int) error {
	if len(h.key) == 0 {
		return ErrHMACKeyMissing
	}
	if len(h.key) < minBytes {
		return ErrHMACKeyTooShort
	}
	return nil
}
