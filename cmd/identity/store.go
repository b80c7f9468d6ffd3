package identity

import "context"

// Store is the user persistence boundary.
//
// Contracts:
// - CreateUser returns ConflictError{Field: "email"} when the normalized email
//   already exists; uniqueness is case-insensitive.
// - GetAuthByEmail is the only read that exposes the password hash.
// - Update* return the fresh row so handlers never serve stale data.
// - DeleteUser removes the row; the caller is responsible for cascading
//   cleanup (refresh tokens, applications, reminders).
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetAuthByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error)
	UpdatePreferences(ctx context.Context, id string, p Preferences) (User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
}
