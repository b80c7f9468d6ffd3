package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of pgx.
//
// Schema (schema name "placemate"):
//
//	CREATE TABLE placemate.users (
//	    id                   TEXT PRIMARY KEY,
//	    email                TEXT NOT NULL UNIQUE,  -- stored normalized (lower/trim)
//	    name                 TEXT NOT NULL,
//	    password_hash        TEXT NOT NULL,
//	    avatar               TEXT,
//	    college              TEXT,
//	    graduation_year      INT,
//	    email_reminders      BOOLEAN NOT NULL DEFAULT TRUE,
//	    reminder_days_before INT NOT NULL DEFAULT 1,
//	    theme                TEXT NOT NULL DEFAULT 'system',
//	    default_view         TEXT NOT NULL DEFAULT 'dashboard',
//	    created_at           TIMESTAMPTZ NOT NULL,
//	    updated_at           TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. The pool is owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const userColumns = `id, email, name, avatar, college, graduation_year,
email_reminders, reminder_days_before, theme, default_view, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Avatar, &u.College, &u.GraduationYear,
		&u.Preferences.EmailReminders, &u.Preferences.ReminderDaysBefore,
		&u.Preferences.Theme, &u.Preferences.DefaultView,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return User{}, OpError{Op: op, Kind: err}
	}

	prefs := DefaultPreferences()

	row := s.pool.QueryRow(ctx, `
INSERT INTO placemate.users (
    id, email, name, password_hash, avatar, college, graduation_year,
    email_reminders, reminder_days_before, theme, default_view, created_at, updated_at
) VALUES ($1, $2, $3, $4, NULL, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING `+userColumns,
		id, NormalizeEmail(in.Email), in.Name, in.PasswordHash,
		in.College, in.GraduationYear,
		prefs.EmailReminders, prefs.ReminderDaysBefore, prefs.Theme, prefs.DefaultView,
		now,
	)

	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
		return User{}, OpError{Op: op, Kind: err}
	}
	return u, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetByID"

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM placemate.users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, OpError{Op: op, Kind: err}
	}
	return u, nil
}

func (s *PostgresStore) GetAuthByEmail(ctx context.Context, email string) (AuthUser, error) {
	const op = "identity.GetAuthByEmail"

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM placemate.users WHERE email = $1`,
		NormalizeEmail(email))

	var au AuthUser
	err := row.Scan(
		&au.ID, &au.Email, &au.Name, &au.Avatar, &au.College, &au.GraduationYear,
		&au.Preferences.EmailReminders, &au.Preferences.ReminderDaysBefore,
		&au.Preferences.Theme, &au.Preferences.DefaultView,
		&au.CreatedAt, &au.UpdatedAt,
		&au.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuthUser{}, NotFoundError{Op: op, Resource: "user"}
		}
		return AuthUser{}, OpError{Op: op, Kind: err}
	}
	return au, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error) {
	const op = "identity.UpdateProfile"

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// COALESCE keeps untouched columns; explicit NULLs are not supported
	// through this path (clearing avatar goes through a dedicated update).
	row := s.pool.QueryRow(ctx, `
UPDATE placemate.users SET
    name            = COALESCE($2, name),
    avatar          = COALESCE($3, avatar),
    college         = COALESCE($4, college),
    graduation_year = COALESCE($5, graduation_year),
    updated_at      = $6
WHERE id = $1
RETURNING `+userColumns,
		id, in.Name, in.Avatar, in.College, in.GraduationYear, now,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, OpError{Op: op, Kind: err}
	}
	return u, nil
}

func (s *PostgresStore) UpdatePreferences(ctx context.Context, id string, p Preferences) (User, error) {
	const op = "identity.UpdatePreferences"

	if err := p.Validate(); err != nil {
		return User{}, err
	}

	row := s.pool.QueryRow(ctx, `
UPDATE placemate.users SET
    email_reminders      = $2,
    reminder_days_before = $3,
    theme                = $4,
    default_view         = $5,
    updated_at           = now()
WHERE id = $1
RETURNING `+userColumns,
		id, p.EmailReminders, p.ReminderDaysBefore, p.Theme, p.DefaultView,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, OpError{Op: op, Kind: err}
	}
	return u, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	const op = "identity.UpdatePassword"

	tag, err := s.pool.Exec(ctx, `
UPDATE placemate.users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return OpError{Op: op, Kind: err}
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	const op = "identity.DeleteUser"

	tag, err := s.pool.Exec(ctx, `DELETE FROM placemate.users WHERE id = $1`, id)
	if err != nil {
		return OpError{Op: op, Kind: err}
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
