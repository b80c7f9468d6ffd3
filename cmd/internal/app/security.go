package app

import (
	"errors"

	"placemate/cmd/security/token"
)

// ValidateSecurityConfig enforces the deployment security policy at startup.
//
// English comment:
// - Fail-fast is intentional: silently falling back to weaker crypto in production is unacceptable.
// - Enforcement checks the same Hasher that will perform the hashing.
func ValidateSecurityConfig(cfg Config, hasher token.Hasher) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// English comment:
	// - Minimum 32 bytes recommended for HMAC-SHA256 secret.
	// - We measure bytes (not runes) because the key is used as raw bytes.
	if err := hasher.RequireHMACKey(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: PLACEMATE_REQUIRE_TOKEN_HMAC=true but PLACEMATE_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: PLACEMATE_REQUIRE_TOKEN_HMAC=true but PLACEMATE_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	return nil
}
