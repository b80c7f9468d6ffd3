// Package account exposes the /users/me HTTP surface: profile reads and
// updates, preference changes, password changes and account deletion.
package account

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/internal/auth/gate"
	"placemate/cmd/internal/auth/session"
	"placemate/cmd/internal/webutil"
	"placemate/cmd/security/password"
)

const maxBodyBytes = 1 << 16

func timeNow() time.Time { return time.Now().UTC() }

// Handler serves account management endpoints. Password changes and account
// deletion revoke every refresh token through the session service.
type Handler struct {
	users    identity.Store
	sessions *session.Service
	pwCfg    password.Config
	logger   *slog.Logger
}

func NewHandler(users identity.Store, sessions *session.Service, pwCfg password.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{users: users, sessions: sessions, pwCfg: pwCfg, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("GET /users/me", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("PATCH /users/me", requireAuth(http.HandlerFunc(h.handleUpdateProfile)))
	mux.Handle("PATCH /users/me/preferences", requireAuth(http.HandlerFunc(h.handleUpdatePreferences)))
	mux.Handle("POST /users/me/password", requireAuth(http.HandlerFunc(h.handleChangePassword)))
	mux.Handle("DELETE /users/me", requireAuth(http.HandlerFunc(h.handleDelete)))
}

type profileUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	Avatar         *string `json:"avatar,omitempty"`
	College        *string `json:"college,omitempty"`
	GraduationYear *int    `json:"graduationYear,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), ident.UserID)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "", user)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req profileUpdateRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if err := identity.ValidateName(trimmed); err != nil {
			webutil.WriteDomainError(w, err)
			return
		}
		req.Name = &trimmed
	}
	if req.GraduationYear != nil {
		if err := identity.ValidateGraduationYear(*req.GraduationYear, timeNow()); err != nil {
			webutil.WriteDomainError(w, err)
			return
		}
	}

	user, err := h.users.UpdateProfile(r.Context(), ident.UserID, identity.ProfileUpdate{
		Name:           req.Name,
		Avatar:         req.Avatar,
		College:        req.College,
		GraduationYear: req.GraduationYear,
	})
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Profile updated", user)
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var prefs identity.Preferences
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &prefs); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.UpdatePreferences(r.Context(), ident.UserID, prefs)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	webutil.WriteData(w, http.StatusOK, "Preferences updated", user)
}

// handleChangePassword verifies the current password before accepting the
// new one, then revokes every refresh token so stolen sessions die with the
// old credential.
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req changePasswordRequest
	if err := webutil.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		webutil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	au, err := h.users.GetAuthByEmail(r.Context(), ident.Email)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if !identity.VerifyPassword(h.pwCfg, req.CurrentPassword, au.PasswordHash) {
		webutil.WriteError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := identity.HashPassword(h.pwCfg, req.NewPassword)
	if err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if err := h.users.UpdatePassword(r.Context(), ident.UserID, hash); err != nil {
		webutil.WriteDomainError(w, err)
		return
	}
	if err := h.sessions.LogoutAllDevices(r.Context(), ident.UserID); err != nil {
		h.logger.Error("revoking sessions after password change failed", "err", err, "user_id", ident.UserID)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("password changed", "user_id", ident.UserID)
	webutil.WriteMessage(w, http.StatusOK, "Password changed; please log in again")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident, ok := gate.IdentityFrom(r.Context())
	if !ok {
		webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.sessions.LogoutAllDevices(r.Context(), ident.UserID); err != nil {
		h.logger.Error("revoking sessions before delete failed", "err", err, "user_id", ident.UserID)
		webutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.users.DeleteUser(r.Context(), ident.UserID); err != nil {
		webutil.WriteDomainError(w, err)
		return
	}

	h.logger.Info("account deleted", "user_id", ident.UserID)
	webutil.WriteMessage(w, http.StatusOK, "Account deleted")
}
