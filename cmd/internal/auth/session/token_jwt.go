package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"placemate/cmd/identity/ids"
)

// Claims is the JWT payload shared by access and refresh tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair bundles the tokens handed to a client after signup, login or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenManager issues and verifies HS256 tokens. Access and refresh tokens
// are signed with distinct secrets so neither can stand in for the other.
type TokenManager struct {
	cfg Config
}

// NewTokenManager validates cfg and returns a manager.
// Misconfigured secrets are a startup failure, not a request-time one.
func NewTokenManager(cfg Config) (*TokenManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenManager{cfg: cfg}, nil
}

func (m *TokenManager) issue(userID, email string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	expiresAt := now.Add(ttl)

	// jti keeps every issued token unique even when iat/exp land on the
	// same second; refresh rotation depends on distinct token hashes.
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueAccess returns a signed access token.
func (m *TokenManager) IssueAccess(userID, email string, now time.Time) (string, error) {
	signed, _, err := m.issue(userID, email, m.cfg.AccessSecret, m.cfg.AccessTokenTTL, now)
	return signed, err
}

// IssueRefresh returns a signed refresh token and its expiry.
func (m *TokenManager) IssueRefresh(userID, email string, now time.Time) (string, time.Time, error) {
	return m.issue(userID, email, m.cfg.RefreshSecret, m.cfg.RefreshTokenTTL, now)
}

// IssuePair returns a fresh access + refresh token pair.
func (m *TokenManager) IssuePair(userID, email string, now time.Time) (TokenPair, error) {
	access, err := m.IssueAccess(userID, email, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := m.IssueRefresh(userID, email, now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: refreshExp}, nil
}

func (m *TokenManager) verify(tokenStr string, secret []byte, now time.Time) (Claims, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.cfg.ClockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess validates an access token and returns its claims.
// Expiry maps to ErrTokenExpired; every other failure to ErrInvalidToken.
func (m *TokenManager) VerifyAccess(tokenStr string, now time.Time) (Claims, error) {
	return m.verify(tokenStr, m.cfg.AccessSecret, now)
}

// VerifyRefresh validates a refresh token signature and expiry. A valid
// signature alone does not make the token usable; the allow-list check in
// Service.Refresh decides that.
func (m *TokenManager) VerifyRefresh(tokenStr string, now time.Time) (Claims, error) {
	return m.verify(tokenStr, m.cfg.RefreshSecret, now)
}
