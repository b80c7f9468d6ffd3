package session

import (
	"context"
	"time"
)

// TokenRow is a server-side allow-list entry for one refresh token.
// Only the hash of the token is ever stored.
type TokenRow struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the refresh-token allow-list persistence boundary.
//
// Contracts:
//   - Add inserts a row; the hash is unique.
//   - Remove deletes the row matching both userID and tokenHash, reporting
//     whether a row existed. It is idempotent.
//   - RemoveAll deletes every row for userID.
//   - Rotate atomically replaces oldHash with newRow. If oldHash is not
//     present for newRow.UserID, it returns ErrTokenNotFound and inserts
//     nothing. Two concurrent rotations of the same hash must yield exactly
//     one winner.
//   - PurgeExpired removes rows whose expiry is before now.
type Store interface {
	Add(ctx context.Context, row TokenRow) error
	Remove(ctx context.Context, userID, tokenHash string) (bool, error)
	RemoveAll(ctx context.Context, userID string) error
	Rotate(ctx context.Context, oldHash string, newRow TokenRow) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
