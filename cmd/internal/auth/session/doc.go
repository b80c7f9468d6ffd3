// Package session implements PlaceMate's token-based session subsystem.
//
// It issues short-lived JWT access tokens and longer-lived JWT refresh
// tokens, signed with distinct HS256 secrets. Refresh tokens are single-use:
// every refresh atomically rotates the presented token out of a server-side
// allow-list and a replayed token is rejected.
//
// Refresh tokens are stored hashed in Postgres (HMAC-SHA256 when
// PLACEMATE_TOKEN_HMAC_KEY is set; otherwise SHA-256 for dev).
//
// Transport (HTTP) integration is intentionally out of scope here.
package session
