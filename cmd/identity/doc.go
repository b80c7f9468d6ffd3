// Package identity implements PlaceMate's identity foundation.
//
// It contains the canonical user model, security primitives (ULID, password
// hashing) and the user store interface used by the HTTP layers.
//
// This package is intentionally dependency-light and security-first.
package identity
