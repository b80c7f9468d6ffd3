// Package app wires the PlaceMate server runtime: config, logging, metrics,
// stores and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"placemate/cmd/identity"
	"placemate/cmd/internal/account"
	"placemate/cmd/internal/analytics"
	authapi "placemate/cmd/internal/auth/api"
	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/auth/session"
	"placemate/cmd/internal/reminder"
	"placemate/cmd/internal/tracker"
	"placemate/cmd/security/password"
	"placemate/cmd/security/token"
)

// stores bundles the persistence layer. Postgres in production, in-memory
// maps when no database is configured (dev mode).
type stores struct {
	users  identity.Store
	tokens session.Store
	apps   tracker.Store
	rems   reminder.Store

	pool *pgxpool.Pool
}

func (s stores) dbEnabled() bool { return s.pool != nil }

func (s stores) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// App is the PlaceMate server runtime.
type App struct {
	cfg Config
	log Logger

	st      stores
	metrics *Metrics

	sessions  *session.Service
	reminders *reminder.Service

	auth      *authapi.Handler
	account   *account.Handler
	tracker   *tracker.Handler
	reminder  *reminder.Handler
	analytics *analytics.Handler

	requireAuth func(http.Handler) http.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	hasher, err := token.HasherFromEnv(32)
	if err != nil {
		return nil, err
	}
	if err := ValidateSecurityConfig(cfg, hasher); err != nil {
		return nil, err
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	st, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewService(sessCfg, st.users, st.tokens, pwCfg, hasher)
	if err != nil {
		st.close()
		return nil, err
	}

	requireAuth := gate.RequireAuth(sessions)

	trackerSvc := tracker.NewService(st.apps)
	reminderSvc := reminder.NewService(st.rems)

	var metrics *Metrics
	if cfg.MetricsEnabled {
		metrics = NewMetrics()
	}

	return &App{
		cfg:         cfg,
		log:         log,
		st:          st,
		metrics:     metrics,
		sessions:    sessions,
		reminders:   reminderSvc,
		auth:        authapi.NewHandler(authapi.LoadConfigFromEnv(), sessions, st.users, log),
		account:     account.NewHandler(st.users, sessions, pwCfg, log),
		tracker:     tracker.NewHandler(trackerSvc, log).WithReminderCleanup(reminderSvc),
		reminder:    reminder.NewHandler(reminderSvc, log),
		analytics:   analytics.NewHandler(st.apps, log),
		requireAuth: requireAuth,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a)

	var handler http.Handler = mux
	handler = WithSecurityHeaders(handler)
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithMetrics(handler, a.metrics)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"url", runtimeBaseURL(a.cfg.HTTPAddr),
		"db_enabled", a.st.dbEnabled(),
	)

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go a.purgeLoop(purgeCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.st.close()
	a.log.Info("server.stopped")
	return nil
}

// purgeLoop periodically sweeps expired refresh tokens out of the allow-list.
// Rows past expiry are already unusable; the sweep just keeps the table small.
func (a *App) purgeLoop(ctx context.Context) {
	if a.cfg.TokenPurgeInterval <= 0 {
		return
	}

	t := time.NewTicker(a.cfg.TokenPurgeInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.sessions.PurgeExpired(ctx)
			if err != nil {
				a.log.Error("token.purge.fail", "err", err)
				continue
			}
			if n > 0 {
				a.log.Info("token.purge", "removed", n)
				if a.metrics != nil {
					a.metrics.TokensPurgedTotal.Add(float64(n))
				}
			}
		}
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and in-memory dev
// stores.
func newStores(ctx context.Context, cfg Config, log Logger) (stores, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return stores{
			users:  identity.NewMemoryStore(),
			tokens: session.NewMemoryStore(),
			apps:   tracker.NewMemoryStore(),
			rems:   reminder.NewMemoryStore(),
		}, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return stores{}, err
	}

	log.Info("db.enabled.postgres_store")
	return stores{
		users:  identity.NewPostgresStore(pool),
		tokens: session.NewPostgresStore(pool),
		apps:   tracker.NewPostgresStore(pool),
		rems:   reminder.NewPostgresStore(pool),
		pool:   pool,
	}, nil
}

// runtimeBaseURL turns a bind address into a URL a developer can open.
// Bind-all addresses map to loopback.
func runtimeBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return "http://" + host + ":" + port
}
