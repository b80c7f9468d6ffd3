package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of pgx.
//
// Schema:
//
//	CREATE TABLE placemate.refresh_tokens (
//	    token_hash TEXT PRIMARY KEY,
//	    user_id    TEXT NOT NULL REFERENCES placemate.users(id) ON DELETE CASCADE,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX refresh_tokens_user_id_idx ON placemate.refresh_tokens (user_id);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Add(ctx context.Context, row TokenRow) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO placemate.refresh_tokens (token_hash, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)`,
		row.TokenHash, row.UserID, row.CreatedAt, row.ExpiresAt)
	return err
}

func (s *PostgresStore) Remove(ctx context.Context, userID, tokenHash string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
DELETE FROM placemate.refresh_tokens WHERE user_id = $1 AND token_hash = $2`,
		userID, tokenHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) RemoveAll(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
DELETE FROM placemate.refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// Rotate deletes the old row and inserts the replacement in one transaction.
// The DELETE is the linearization point: of two concurrent rotations of the
// same hash, one sees RowsAffected=0 and fails with ErrTokenNotFound.
func (s *PostgresStore) Rotate(ctx context.Context, oldHash string, newRow TokenRow) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
DELETE FROM placemate.refresh_tokens WHERE user_id = $1 AND token_hash = $2`,
		newRow.UserID, oldHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	_, err = tx.Exec(ctx, `
INSERT INTO placemate.refresh_tokens (token_hash, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)`,
		newRow.TokenHash, newRow.UserID, newRow.CreatedAt, newRow.ExpiresAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	tag, err := s.pool.Exec(ctx, `
DELETE FROM placemate.refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
