package identity

import (
	"errors"

	"placemate/cmd/security/password"
)

// HashPassword returns a PHC-style Argon2id hash string.
// Policy (min/max length) comes from the provided config; the account
// baseline is a minimum of 6 characters, which the config may tighten.
func HashPassword(cfg password.Config, plain string) (string, error) {
	if cfg.Policy.MinLength < 6 {
		cfg.Policy.MinLength = 6
	}
	if cfg.Policy.MaxLength <= 0 {
		cfg.Policy.MaxLength = 256
	}

	enc, err := cfg.Hash(plain)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password must be at least 6 characters"}
		case errors.Is(err, password.ErrPasswordTooLong):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password too long"}
		case errors.Is(err, password.ErrWeakPassword):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password too weak"}
		default:
			return "", err
		}
	}
	return enc, nil
}

// VerifyPassword checks a password against a PHC Argon2id hash.
// Malformed hashes report as a mismatch rather than an input error so the
// login path stays indistinguishable.
func VerifyPassword(cfg password.Config, plain string, encodedPHC string) bool {
	ok, err := cfg.Verify(encodedPHC, plain)
	if err != nil {
		return false
	}
	return ok
}

// DummyHash produces a throwaway hash used to equalize login timing when the
// email does not resolve to an account.
func DummyHash(cfg password.Config) string {
	enc, err := cfg.Hash("placemate-dummy-password-for-timing")
	if err != nil {
		return ""
	}
	return enc
}
