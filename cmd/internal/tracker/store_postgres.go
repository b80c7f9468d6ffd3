package tracker

import (
	"context"
	"encoding/json"
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
//	CREATE TABLE placemate.applications (
//	    id                  TEXT PRIMARY KEY,
//	    user_id             TEXT NOT NULL REFERENCES placemate.users(id) ON DELETE CASCADE,
//	    company_name        TEXT NOT NULL,
//	    company_logo        TEXT,
//	    role                TEXT NOT NULL,
//	    location            TEXT NOT NULL DEFAULT '',
//	    job_type            TEXT NOT NULL,
//	    salary              TEXT,
//	    stage               TEXT NOT NULL,
//	    status              TEXT NOT NULL,
//	    applied_date        TIMESTAMPTZ NOT NULL,
//	    deadline            TIMESTAMPTZ,
//	    next_interview_date TIMESTAMPTZ,
//	    source              TEXT NOT NULL DEFAULT '',
//	    job_url             TEXT,
//	    notes               TEXT NOT NULL DEFAULT '',
//	    timeline            JSONB NOT NULL DEFAULT '[]',
//	    contacts            JSONB NOT NULL DEFAULT '[]',
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    updated_at          TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX applications_user_id_idx ON placemate.applications (user_id, created_at DESC);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const appColumns = `id, user_id, company_name, company_logo, role, location, job_type, salary,
stage, status, applied_date, deadline, next_interview_date, source, job_url, notes,
timeline, contacts, created_at, updated_at`

func scanApp(row pgx.Row) (Application, error) {
	var (
		a                  Application
		timeline, contacts []byte
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.CompanyName, &a.CompanyLogo, &a.Role, &a.Location,
		&a.JobType, &a.Salary, &a.Stage, &a.Status, &a.AppliedDate, &a.Deadline,
		&a.NextInterviewDate, &a.Source, &a.JobURL, &a.Notes,
		&timeline, &contacts, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	if err := json.Unmarshal(timeline, &a.Timeline); err != nil {
		return Application{}, err
	}
	if err := json.Unmarshal(contacts, &a.Contacts); err != nil {
		return Application{}, err
	}
	return a, nil
}

func (s *PostgresStore) Create(ctx context.Context, app Application) error {
	const op = "tracker.Create"

	timeline, contacts, err := marshalJSONB(app)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO placemate.applications (
    id, user_id, company_name, company_logo, role, location, job_type, salary,
    stage, status, applied_date, deadline, next_interview_date, source, job_url,
    notes, timeline, contacts, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		app.ID, app.UserID, app.CompanyName, app.CompanyLogo, app.Role, app.Location,
		app.JobType, app.Salary, app.Stage, app.Status, app.AppliedDate, app.Deadline,
		app.NextInterviewDate, app.Source, app.JobURL, app.Notes,
		timeline, contacts, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, userID, id string) (Application, error) {
	const op = "tracker.GetByID"

	row := s.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM placemate.applications WHERE user_id = $1 AND id = $2`,
		userID, id)

	a, err := scanApp(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, identity.NotFoundError{Op: op, Resource: "application"}
		}
		return Application{}, identity.OpError{Op: op, Kind: err}
	}
	return a, nil
}

func (s *PostgresStore) List(ctx context.Context, userID string, f ListFilter, p pagination.Params) ([]Application, int64, error) {
	const op = "tracker.List"

	where := []string{"user_id = $1"}
	args := []any{userID}

	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Stage != "" {
		add("stage = $%d", f.Stage)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Search != "" {
		add("(company_name ILIKE $%[1]d OR role ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if f.AppliedFrom != nil {
		add("applied_date >= $%d", *f.AppliedFrom)
	}
	if f.AppliedTo != nil {
		add("applied_date <= $%d", *f.AppliedTo)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM placemate.applications WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, identity.OpError{Op: op, Kind: err}
	}

	dir := "DESC"
	if !p.Desc {
		dir = "ASC"
	}
	// p.SortBy is whitelisted by pagination.Parse; never raw user input.
	q := fmt.Sprintf("SELECT %s FROM placemate.applications WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		appColumns, cond, p.SortBy, dir, p.Limit, p.Offset())

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, identity.OpError{Op: op, Kind: err}
	}
	defer rows.Close()

	apps, err := collectApps(rows)
	if err != nil {
		return nil, 0, identity.OpError{Op: op, Kind: err}
	}
	return apps, total, nil
}

func (s *PostgresStore) ListAll(ctx context.Context, userID string) ([]Application, error) {
	const op = "tracker.ListAll"

	rows, err := s.pool.Query(ctx,
		`SELECT `+appColumns+` FROM placemate.applications WHERE user_id = $1 ORDER BY applied_date`,
		userID)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	defer rows.Close()

	apps, err := collectApps(rows)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	return apps, nil
}

func (s *PostgresStore) Update(ctx context.Context, app Application) error {
	const op = "tracker.Update"

	timeline, contacts, err := marshalJSONB(app)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}

	tag, err := s.pool.Exec(ctx, `
UPDATE placemate.applications SET
    company_name = $3, company_logo = $4, role = $5, location = $6, job_type = $7,
    salary = $8, stage = $9, status = $10, applied_date = $11, deadline = $12,
    next_interview_date = $13, source = $14, job_url = $15, notes = $16,
    timeline = $17, contacts = $18, updated_at = $19
WHERE user_id = $1 AND id = $2`,
		app.UserID, app.ID, app.CompanyName, app.CompanyLogo, app.Role, app.Location,
		app.JobType, app.Salary, app.Stage, app.Status, app.AppliedDate, app.Deadline,
		app.NextInterviewDate, app.Source, app.JobURL, app.Notes,
		timeline, contacts, app.UpdatedAt,
	)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "application"}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	const op = "tracker.Delete"

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM placemate.applications WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return identity.OpError{Op: op, Kind: err}
	}
	if tag.RowsAffected() == 0 {
		return identity.NotFoundError{Op: op, Resource: "application"}
	}
	return nil
}

func (s *PostgresStore) UpcomingInterviews(ctx context.Context, userID string, after time.Time, limit int) ([]Application, error) {
	const op = "tracker.UpcomingInterviews"

	rows, err := s.pool.Query(ctx, `
SELECT `+appColumns+` FROM placemate.applications
WHERE user_id = $1 AND status = $2 AND next_interview_date >= $3
ORDER BY next_interview_date
LIMIT $4`,
		userID, StatusActive, after, limit)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	defer rows.Close()

	apps, err := collectApps(rows)
	if err != nil {
		return nil, identity.OpError{Op: op, Kind: err}
	}
	return apps, nil
}

func collectApps(rows pgx.Rows) ([]Application, error) {
	var apps []Application
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func marshalJSONB(app Application) (timeline, contacts []byte, err error) {
	if app.Timeline == nil {
		app.Timeline = []TimelineEvent{}
	}
	if app.Contacts == nil {
		app.Contacts = []Contact{}
	}
	timeline, err = json.Marshal(app.Timeline)
	if err != nil {
		return nil, nil, err
	}
	contacts, err = json.Marshal(app.Contacts)
	if err != nil {
		return nil, nil, err
	}
	return timeline, contacts, nil
}

var _ Store = (*PostgresStore)(nil)
