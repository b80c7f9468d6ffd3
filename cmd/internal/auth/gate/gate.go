// Package gate guards HTTP routes with access-token authentication.
//
// Tokens are accepted from the Authorization header only ("Bearer <token>").
// Cookies never carry access tokens; the refresh cookie is consumed solely
// by the /auth/refresh endpoint.
package gate

import (
	"context"
	"net/http"
	"strings"

	"placemate/cmd/internal/auth/session"
	"placemate/cmd/internal/webutil"
)

// Verifier validates an access token. Satisfied by *session.Service.
type Verifier interface {
	VerifyAccess(tokenStr string) (session.Identity, error)
}

type ctxKey struct{}

// IdentityFrom extracts the authenticated principal placed by RequireAuth
// or OptionalAuth.
func IdentityFrom(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(session.Identity)
	return id, ok
}

// RequireAuth rejects requests without a valid bearer token. The 401 message
// distinguishes missing, expired and invalid tokens so clients know whether
// a refresh is worth attempting.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := BearerToken(r)
			if tok == "" {
				webutil.WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			id, err := v.VerifyAccess(tok)
			if err != nil {
				switch err {
				case session.ErrTokenExpired:
					webutil.WriteError(w, http.StatusUnauthorized, "Access token expired")
				default:
					webutil.WriteError(w, http.StatusUnauthorized, "Invalid access token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		})
	}
}

// OptionalAuth attaches an identity when a valid bearer token is present and
// silently proceeds anonymously otherwise.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := BearerToken(r); tok != "" {
				if id, err := v.VerifyAccess(tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
