package session

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/security/password"
	"placemate/cmd/security/token"
)

// Identity is the authenticated principal carried through request handling.
type Identity struct {
	UserID string
	Email  string
}

// Session is the result of signup and login: the account plus a token pair.
type Session struct {
	User identity.User
	Pair TokenPair
}

// SignupInput describes a registration request.
type SignupInput struct {
	Email          string
	Password       string
	Name           string
	College        *string
	GraduationYear *int
}

// Service owns the refresh-token allow-list. No other component mutates it.
type Service struct {
	tokens *TokenManager
	store  Store
	users  identity.Store
	pwCfg  password.Config
	hasher token.Hasher

	// dummyHash equalizes login timing for unknown emails.
	dummyHash string

	now func() time.Time
}

// NewService wires the session service. cfg must already be validated by
// NewTokenManager; pwCfg and hasher come from the security packages.
func NewService(cfg Config, users identity.Store, store Store, pwCfg password.Config, hasher token.Hasher) (*Service, error) {
	tm, err := NewTokenManager(cfg)
	if err != nil {
		return nil, err
	}

	return &Service{
		tokens:    tm,
		store:     store,
		users:     users,
		pwCfg:     pwCfg,
		hasher:    hasher,
		dummyHash: identity.DummyHash(pwCfg),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetNow overrides the clock. Tests only.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// Signup registers an account and starts its first session.
// A conflicting email surfaces as identity.ConflictError.
func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	email := identity.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, identity.OpError{Op: "session.Signup", Kind: identity.ErrInvalidInput, Msg: "invalid email address"}
	}

	name := strings.TrimSpace(in.Name)
	if err := identity.ValidateName(name); err != nil {
		return Session{}, err
	}
	if in.GraduationYear != nil {
		if err := identity.ValidateGraduationYear(*in.GraduationYear, s.now()); err != nil {
			return Session{}, err
		}
	}

	hash, err := identity.HashPassword(s.pwCfg, in.Password)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	user, err := s.users.CreateUser(ctx, identity.CreateUserInput{
		Email:          email,
		Name:           name,
		PasswordHash:   hash,
		College:        in.College,
		GraduationYear: in.GraduationYear,
		Now:            now,
	})
	if err != nil {
		return Session{}, err
	}

	pair, err := s.issueAndStore(ctx, user.ID, user.Email, now)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Pair: pair}, nil
}

// Login authenticates by email + password and starts a session.
// Unknown email and wrong password both return ErrInvalidCredentials; the
// unknown-email path still burns a hash verification so the two are not
// separable by timing.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (Session, error) {
	au, err := s.users.GetAuthByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			identity.VerifyPassword(s.pwCfg, plainPassword, s.dummyHash)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !identity.VerifyPassword(s.pwCfg, plainPassword, au.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	pair, err := s.issueAndStore(ctx, au.ID, au.Email, s.now())
	if err != nil {
		return Session{}, err
	}
	return Session{User: au.User, Pair: pair}, nil
}

// Refresh exchanges a live refresh token for a fresh pair. The presented
// token is rotated out of the allow-list atomically; a replay of it fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, Identity, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenPair{}, Identity{}, ErrTokenRequired
	}

	now := s.now()
	claims, err := s.tokens.VerifyRefresh(refreshToken, now)
	if err != nil {
		return TokenPair{}, Identity{}, err
	}

	pair, err := s.tokens.IssuePair(claims.UserID, claims.Email, now)
	if err != nil {
		return TokenPair{}, Identity{}, err
	}

	err = s.store.Rotate(ctx, s.hasher.Hash(refreshToken), TokenRow{
		TokenHash: s.hasher.Hash(pair.RefreshToken),
		UserID:    claims.UserID,
		CreatedAt: now,
		ExpiresAt: pair.RefreshExpiresAt,
	})
	if err != nil {
		return TokenPair{}, Identity{}, err
	}

	return pair, Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// LogoutDevice removes one refresh token from the allow-list. Unknown tokens
// are a no-op; logout is idempotent.
func (s *Service) LogoutDevice(ctx context.Context, userID, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrTokenRequired
	}
	_, err := s.store.Remove(ctx, userID, s.hasher.Hash(refreshToken))
	return err
}

// LogoutAllDevices removes every refresh token for the user.
func (s *Service) LogoutAllDevices(ctx context.Context, userID string) error {
	return s.store.RemoveAll(ctx, userID)
}

// VerifyAccess validates an access token without touching storage.
func (s *Service) VerifyAccess(tokenStr string) (Identity, error) {
	claims, err := s.tokens.VerifyAccess(tokenStr, s.now())
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// PurgeExpired sweeps dead allow-list rows. Called from a background loop.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.PurgeExpired(ctx, s.now())
}

func (s *Service) issueAndStore(ctx context.Context, userID, email string, now time.Time) (TokenPair, error) {
	pair, err := s.tokens.IssuePair(userID, email, now)
	if err != nil {
		return TokenPair{}, err
	}

	err = s.store.Add(ctx, TokenRow{
		TokenHash: s.hasher.Hash(pair.RefreshToken),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: pair.RefreshExpiresAt,
	})
	if err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}
