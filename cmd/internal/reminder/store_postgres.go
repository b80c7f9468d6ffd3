package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"placemate/cmd/identity"
	"placemate/cmd/internal/pagination"
)

// PostgresStore implements Store on top of pgx.
//
// Schema:
//
//	CREATE TABLE placemate.reminders (
//	    id             TEXT PRIMARY KEY,
//	    user_id        TEXT NOT NULL REFERENCES placemate.users(id) ON DELETE CASCADE,
//	    application_id TEXT REFERENCES placemate.applications(id) ON DELETE CASCADE,
//	    title          TEXT NOT NULL,
//	    description    TEXT NOT NULL DEFAULT '',
//	    type           TEXT NOT NULL,
//	    reminder_date  TIMESTAMPTZ NOT NULL,
//	    is_completed   BOOLEAN NOT NULL DEFAULT FALSE,
//	    completed_at   TIMESTAMPTZ,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX reminders_user_due_idx ON placemate.reminders (user_id, is_completed, reminder_date);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const remColumns = `id, user_id, application_id, title, description, type,
reminder_date, is_completed, completed_at, created_at, updated_at`

func scanReminder(row pgx.Row) (Reminder, error) {
	var rem Reminder
	err := row.Scan(
		&rem.ID, &rem.UserID, &rem.ApplicationID, &rem.Title, &rem.Description,
		&rem.Type, &rem.ReminderDate, &rem.IsCompleted, &rem.CompletedAt,
		&rem.CreatedAt, &rem.UpdatedAt,
	)
	return rem, err
}

func (s *PostgresStore) Create(ctx context.Context, rem Reminder) error {
	const op = "reminder.Create"

	_, err := s.pool.Exec(ctx, `
INSERT INTO placemate.reminders (
    id, user_id, application_id, title, description, type,
    reminder_date, is_completed, completed_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rem.ID, rem.UserID, rem.ApplicationID, rem.Title, rem.Description, rem.Type,
		rem.ReminderDate, rem.IsCompleted, rem.CompletedAt, rem.CreatedAt, rem.UpdatedAt,
	)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, userID, id string) (Reminder, error) {
	const op = "reminder.GetByID"

	row := s.pool.QueryRow(ctx,
		`SELECT `+remColumns+` FROM placemate.reminders WHERE user_id = $1 AND id = $2`,
		userID, id)

	rem, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reminder{}, identity.NotFoundError{Op: op, Resource: "reminder"}
		}
		return Reminder{}, identity.OpError{Op: op, Kind: err}
	}
	return rem, nil
}

func (s *PostgresStore) List(ctx context.Context, userID string, f ListFilter, p pagination.Params) ([]Reminder, int64, error) {
	const op = "reminder.List"

	where := []string{"user_id = $1"}
	args := []any{userID}

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Completed != nil {
		add("is_completed = $%d", *f.Completed)
	}
	if f.ApplicationID != "" {
		add("application_id = $%d", f.ApplicationID)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM placemate.reminders WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, identity.OpError{Op: op, Kind: err}
	}

	dir := "DESC"
	if !p.Desc {
		dir = "ASC"
	}
	// p.SortBy is whitelisted by pagination.Parse; never raw user input.
	q := fmt.Sprintf("SELECT %s FROM placemate.reminders WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		remColumns, cond, p.SortBy, dir, p.Limit, p.Offset())

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, identity.OpError{Op: op, Kind: err}
	}
	defer rows.Close()

	rems, err := collectReminders(rows)
	if err != nil {
		return nil, 0, identity.OpError{Op: op, Kind: err}
	}
	return rems, total, nil
}

func (s *PostgresStore) Update(ctx context.Context, rem Reminder) error {
	const op = "reminder.Update"

	tag, err := s.pool.Exec(ctx, `
UPDATE placemate.reminders SET
    application_id = $3, title = $4, description = $5, type = $6,
    reminder_date = $7, is_completed = $8, completed_at = $9, updated_at = $10
WHERE user_id = $1 AND id = $2`,
		rem.UserID, rem.ID, rem.ApplicationID, rem.Title, rem.Description, rem.Type,
		rem.ReminderDate, rem.IsCompleted, rem.CompletedAt, rem.UpdatedAt,
	)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "reminder"}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	const op = "reminder.Delete"

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM placemate.reminders WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "reminder"}
	}
	return nil
}

func (s *PostgresStore) Upcoming(ctx context.Context, userID string, now time.Time, limit int) ([]Reminder, error) {
	const op = "reminder.Upcoming"

	rows, err := s.pool.Query(ctx, `
SELECT `+remColumns+` FROM placemate.reminders
WHERE user_id = $1 AND is_completed = FALSE AND reminder_date >= $2
ORDER BY reminder_date
LIMIT $3`,
		userID, now, limit)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	defer rows.Close()

	rems, err := collectReminders(rows)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	return rems, nil
}

func (s *PostgresStore) Overdue(ctx context.Context, userID string, now time.Time) ([]Reminder, error) {
	const op = "reminder.Overdue"

	rows, err := s.pool.Query(ctx, `
SELECT `+remColumns+` FROM placemate.reminders
WHERE user_id = $1 AND is_completed = FALSE AND reminder_date < $2
ORDER BY reminder_date`,
		userID, now)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	defer rows.Close()

	rems, err := collectReminders(rows)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	return rems, nil
}

func (s *PostgresStore) DeleteByApplication(ctx context.Context, userID, applicationID string) (int64, error) {
	const op = "reminder.DeleteByApplication"

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM placemate.reminders WHERE user_id = $1 AND application_id = $2`,
		userID, applicationID)
	if err != nil {
		return 0, identity.OpError{Op: op, Kind: err}
	}
	return tag.RowsAffected(), nil
}

func collectReminders(rows pgx.Rows) ([]Reminder, error) {
	var rems []Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		rems = append(rems, rem)
	}
	return rems, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
