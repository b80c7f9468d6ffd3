package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" or "pretty"

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// Security policy:
	// If true, PLACEMATE_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// refresh-token hashing must be HMAC-based.
	RequireTokenHMAC bool

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool

	// TokenPurgeInterval is the period of the expired refresh-token sweep.
	// Zero disables the sweep.
	TokenPurgeInterval time.Duration
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("PLACEMATE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("PLACEMATE_LOG_LEVEL", "info"),
		LogFormat: EnvString("PLACEMATE_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("PLACEMATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("PLACEMATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("PLACEMATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("PLACEMATE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("PLACEMATE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("PLACEMATE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("PLACEMATE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("PLACEMATE_DB_MIN_CONNS", 0),

		CORSAllowedOrigins:   EnvStringList("PLACEMATE_CORS_ALLOWED_ORIGINS", nil),
		CORSAllowCredentials: EnvBool("PLACEMATE_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("PLACEMATE_CORS_MAX_AGE_SECONDS", 600),

		ReadinessRequireDB: EnvBool("PLACEMATE_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("PLACEMATE_REQUIRE_TOKEN_HMAC", false),

		MetricsEnabled: EnvBool("PLACEMATE_METRICS_ENABLED", true),

		TokenPurgeInterval: EnvDuration("PLACEMATE_TOKEN_PURGE_INTERVAL", time.Hour),
	}
}
