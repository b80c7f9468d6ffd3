// Package authapi exposes the /auth HTTP surface: signup, login, refresh,
// logout, logout-all and me.
package authapi

import (
	"log/slog"
	"net/http"

	"placemate/cmd/identity"
	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/auth/session"
	"placemate/cmd/internal/webutil"
)

// Handler serves the auth endpoints. All allow-list mutations go through
// the session service; the handler only does transport concerns.
type Handler struct {
	cfg      Config
	svc      *session.Service
	users    identity.Store
	logger   *slog.Logger
	throttle *throttle
}

func NewHandler(cfg Config, svc *session.Service, users identity.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:      cfg,
		svc:      svc,
		users:    users,
		logger:   logger,
		throttle: newThrottle(cfg.ThrottleWindow, cfg.ThrottleMax),
	}
}

// Register mounts the auth routes. requireAuth guards the session-bound
// endpoints.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/signup", h.handleSignup)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh", h.handleRefresh)
	mux.Handle("POST /auth/logout", requireAuth(http.HandlerFunc(h.handleLogout)))
	mux.Handle("POST /auth/logout-all", requireAuth(http.HandlerFunc(h.handleLogoutAll)))
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(h.handleMe)))
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if ok, retry := h.throttle.allow("signup:" + h.clientIP(r)); !ok {
		writeRateLimited(w, retry)
		return
	}

	var req signupRequest
	if err := webutil.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.svc.Signup(r.Context(), session.SignupInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		College:        req.College,
		GraduationYear: req.GraduationYear,
	})
	if err != nil {
		if identity.IsConflict(err) {
			webutil.WriteError(w, http.StatusConflict, "Email already registered")
			return
		}
		if identity.IsInvalidInput(err) {
			webutil.WriteDomainError(w, err)
			return
		}
		h.logger.Error("signup failed", "err", err)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user signed up", "user_id", sess.User.ID)
	h.setRefreshCookie(w, sess.Pair.RefreshToken, sess.Pair.RefreshExpiresAt)
	webutil.WriteData(w, http.StatusCreated, "Account created successfully", h.authPayload(sess))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if ok, retry := h.throttle.allow("login:" + h.clientIP(r)); !ok {
		writeRateLimited(w, retry)
		return
	}

	var req loginRequest
	if err := webutil.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == session.ErrInvalidCredentials {
			webutil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login failed", "err", err)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user logged in", "user_id", sess.User.ID)
	h.setRefreshCookie(w, sess.Pair.RefreshToken, sess.Pair.RefreshExpiresAt)
	webutil.WriteData(w, http.StatusOK, "Logged in successfully", h.authPayload(sess))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// Body token wins; the cookie is the web fallback.
	var req refreshRequest
	_ = webutil.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req)

	tok := ""
	if req.RefreshToken != nil {
		tok = *req.RefreshToken
	}
	if tok == "" {
		if c, ok := h.refreshTokenFromCookie(r); ok {
			tok = c
		}
	}

	pair, ident, err := h.svc.Refresh(r.Context(), tok)
	if err != nil {
		switch err {
		case session.ErrTokenRequired:
			webutil.WriteError(w, http.StatusBadRequest, "Refresh token is required")
		case session.ErrTokenExpired:
			h.clearRefreshCookie(w)
			webutil.WriteError(w, http.StatusUnauthorized, "Refresh token expired")
		case session.ErrInvalidToken, session.ErrTokenNotFound:
			h.clearRefreshCookie(w)
			webutil.WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		default:
			h.logger.Error("refresh failed", "err", err)
			webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.logger.Debug("refresh token rotated", "user_id", ident.UserID)
	h.setRefreshCookie(w, pair.RefreshToken, pair.RefreshExpiresAt)

	data := refreshData{AccessToken: pair.AccessToken}
	if !h.cfg.CookieEnabled {
		data.RefreshToken = pair.RefreshToken
	}
	webutil.WriteData(w, http.StatusOK, "Token refreshed", data)
}

// handleLogout ends the presented device session. Without a refresh token in
// body or cookie it falls back to ending every session, matching the shape
// clients already rely on.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req logoutRequest
	_ = webutil.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req)

	tok := ""
	if req.RefreshToken != nil {
		tok = *req.RefreshToken
	}
	if tok == "" {
		if c, ok := h.refreshTokenFromCookie(r); ok {
			tok = c
		}
	}

	var err error
	if tok == "" {
		err = h.svc.LogoutAllDevices(r.Context(), ident.UserID)
	} else {
		err = h.svc.LogoutDevice(r.Context(), ident.UserID, tok)
	}
	if err != nil {
		h.logger.Error("logout failed", "err", err, "user_id", ident.UserID)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.clearRefreshCookie(w)
	webutil.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.svc.LogoutAllDevices(r.Context(), ident.UserID); err != nil {
		h.logger.Error("logout-all failed", "err", err, "user_id", ident.UserID)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.clearRefreshCookie(w)
	webutil.WriteMessage(w, http.StatusOK, "Logged out from all devices")
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), ident.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			webutil.WriteError(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		h.logger.Error("me lookup failed", "err", err, "user_id", ident.UserID)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	webutil.WriteData(w, http.StatusOK, "", meData{User: user})
}

func (h *Handler) authPayload(sess session.Session) authData {
	data := authData{User: sess.User, AccessToken: sess.Pair.AccessToken}
	if !h.cfg.CookieEnabled {
		data.RefreshToken = sess.Pair.RefreshToken
	}
	return data
}
