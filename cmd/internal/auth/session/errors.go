package session

import "errors"

var (
	// ErrInvalidToken is returned when a token fails signature or claim validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRequired is returned when a refresh is attempted without a token.
	ErrTokenRequired = errors.New("refresh token is required")

	// ErrTokenNotFound is returned when a structurally valid refresh token is
	// not present in the allow-list. This covers logout, prior rotation and
	// replay; callers must not distinguish these cases to clients.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, so login failures stay indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
