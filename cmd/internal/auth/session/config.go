package session

import (
	"os"
	"time"
)

// minSecretBytes is the floor for HS256 signing secrets.
const minSecretBytes = 32

// Config defines all runtime configuration for the session subsystem.
//
// It controls token TTLs, clock skew tolerance and the HS256 signing
// secrets. Access and refresh tokens MUST use different secrets so a leaked
// refresh token can never pass as an access token and vice versa.
//
// This struct is intentionally explicit and environment-driven so that
// production deployments can tune security parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of issued tokens.
	Issuer string

	// AccessTokenTTL defines the lifetime of access tokens.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL defines the lifetime of refresh tokens.
	RefreshTokenTTL time.Duration

	// ClockSkew defines the allowed time skew during token validation.
	ClockSkew time.Duration

	// AccessSecret and RefreshSecret sign HS256 tokens of each type.
	AccessSecret  []byte
	RefreshSecret []byte
}

// DefaultConfig returns the default TTL policy.
//
// Secrets are not defaulted; deployments must provide them.
func DefaultConfig() Config {
	return Config{
		Issuer:          "placemate",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ClockSkew:       30 * time.Second,
	}
}

// Validate checks config invariants. Returns ErrConfig when violated.
func (c Config) Validate() error {
	if len(c.AccessSecret) < minSecretBytes || len(c.RefreshSecret) < minSecretBytes {
		return ErrConfig
	}
	if string(c.AccessSecret) == string(c.RefreshSecret) {
		return ErrConfig
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.ClockSkew < 0 {
		return ErrConfig
	}
	if c.AccessTokenTTL > c.RefreshTokenTTL {
		return ErrConfig
	}
	return nil
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - PLACEMATE_JWT_ACCESS_SECRET  (>= 32 bytes)
//   - PLACEMATE_JWT_REFRESH_SECRET (>= 32 bytes, distinct from access)
//
// Optional (durations must be valid Go duration strings):
//   - PLACEMATE_AUTH_ISSUER
//   - PLACEMATE_AUTH_ACCESS_TTL
//   - PLACEMATE_AUTH_REFRESH_TTL
//   - PLACEMATE_AUTH_CLOCK_SKEW
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("PLACEMATE_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("PLACEMATE_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("PLACEMATE_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenTTL = d
	}

	if v := os.Getenv("PLACEMATE_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	cfg.AccessSecret = []byte(os.Getenv("PLACEMATE_JWT_ACCESS_SECRET"))
	cfg.RefreshSecret = []byte(os.Getenv("PLACEMATE_JWT_REFRESH_SECRET"))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
