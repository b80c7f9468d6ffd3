package session

import (
	"strings"
	"testing"
	"time"
)

func setValidSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("PLACEMATE_JWT_ACCESS_SECRET", strings.Repeat("a", 32))
	t.Setenv("PLACEMATE_JWT_REFRESH_SECRET", strings.Repeat("r", 32))
}

func TestLoadConfigFromEnv_MissingSecrets(t *testing.T) {
	t.Setenv("PLACEMATE_JWT_ACCESS_SECRET", "")
	t.Setenv("PLACEMATE_JWT_REFRESH_SECRET", "")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig on missing secrets, got %v", err)
	}
}

func TestLoadConfigFromEnv_ShortSecret(t *testing.T) {
	t.Setenv("PLACEMATE_JWT_ACCESS_SECRET", "too-short")
	t.Setenv("PLACEMATE_JWT_REFRESH_SECRET", strings.Repeat("r", 32))
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig on short secret, got %v", err)
	}
}

func TestLoadConfigFromEnv_SharedSecretRejected(t *testing.T) {
	shared := strings.Repeat("s", 32)
	t.Setenv("PLACEMATE_JWT_ACCESS_SECRET", shared)
	t.Setenv("PLACEMATE_JWT_REFRESH_SECRET", shared)
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig when both token types share a secret, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidDurations(t *testing.T) {
	setValidSecrets(t)
	t.Setenv("PLACEMATE_AUTH_ACCESS_TTL", "-5m")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative duration, got %v", err)
	}
}

func TestLoadConfigFromEnv_AccessLongerThanRefresh(t *testing.T) {
	setValidSecrets(t)
	t.Setenv("PLACEMATE_AUTH_ACCESS_TTL", "200h")
	t.Setenv("PLACEMATE_AUTH_REFRESH_TTL", "100h")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for ttl order, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	setValidSecrets(t)
	t.Setenv("PLACEMATE_AUTH_ISSUER", "placemate-test")
	t.Setenv("PLACEMATE_AUTH_ACCESS_TTL", "10m")
	t.Setenv("PLACEMATE_AUTH_REFRESH_TTL", "48h")
	t.Setenv("PLACEMATE_AUTH_CLOCK_SKEW", "20s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Issuer != "placemate-test" {
		t.Fatalf("issuer mismatch: %q", cfg.Issuer)
	}
	if cfg.AccessTokenTTL != 10*time.Minute {
		t.Fatalf("access ttl mismatch: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Fatalf("refresh ttl mismatch: %v", cfg.RefreshTokenTTL)
	}
	if cfg.ClockSkew != 20*time.Second {
		t.Fatalf("clock skew mismatch: %v", cfg.ClockSkew)
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	setValidSecrets(t)

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("default access ttl mismatch: %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("default refresh ttl mismatch: %v", cfg.RefreshTokenTTL)
	}
}
