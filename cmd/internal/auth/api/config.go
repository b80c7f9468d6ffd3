package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the auth HTTP surface.
type Config struct {
	// MaxBodyBytes caps request bodies on auth endpoints.
	MaxBodyBytes int64

	// Refresh-token cookie transport. When enabled, the refresh token is
	// delivered in an httpOnly cookie and omitted from response bodies.
	CookieEnabled  bool
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// Login/signup throttling per client IP.
	ThrottleWindow   time.Duration
	ThrottleMax      int
	TrustProxyHeader bool
}

// DefaultConfig returns the production posture: strict same-site, secure
// cookies, modest throttle.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:   1 << 16, // 64 KiB
		CookieEnabled:  true,
		CookieName:     "refreshToken",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteStrictMode,

		ThrottleWindow: 15 * time.Minute,
		ThrottleMax:    20,
	}
}

// LoadConfigFromEnv applies PLACEMATE_AUTHAPI_* overrides to the defaults.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.MaxBodyBytes = envInt64("PLACEMATE_AUTHAPI_MAX_BODY_BYTES", cfg.MaxBodyBytes, 1024, 1<<20)
	cfg.CookieEnabled = envBool("PLACEMATE_AUTHAPI_COOKIE_ENABLED", cfg.CookieEnabled)
	if v := strings.TrimSpace(os.Getenv("PLACEMATE_AUTHAPI_COOKIE_NAME")); v != "" {
		cfg.CookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("PLACEMATE_AUTHAPI_COOKIE_DOMAIN")); v != "" {
		cfg.CookieDomain = v
	}
	cfg.CookieSecure = envBool("PLACEMATE_AUTHAPI_COOKIE_SECURE", cfg.CookieSecure)
	cfg.ThrottleWindow = envDuration("PLACEMATE_AUTHAPI_THROTTLE_WINDOW", cfg.ThrottleWindow)
	cfg.ThrottleMax = envInt("PLACEMATE_AUTHAPI_THROTTLE_MAX", cfg.ThrottleMax, 1, 10000)
	cfg.TrustProxyHeader = envBool("PLACEMATE_AUTHAPI_TRUST_PROXY", cfg.TrustProxyHeader)

	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def, minVal, maxVal int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minVal || n > maxVal {
		return def
	}
	return n
}

func envInt64(key string, def, minVal, maxVal int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < minVal || n > maxVal {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
