package tracker

import (
	"context"
	"time"

	"placemate/cmd/internal/pagination"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Stage  string
	Status string
	// Search matches company name and role, case-insensitively.
	Search string
	// AppliedFrom/AppliedTo bound the applied date (inclusive).
	AppliedFrom *time.Time
	AppliedTo   *time.Time
}

// SortColumns is the ORDER BY whitelist for application lists.
var SortColumns = []string{"created_at", "applied_date", "company_name", "deadline"}

// Store is the application persistence boundary. All reads and writes are
// scoped by user ID; an ID belonging to another user behaves as missing.
type Store interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, userID, id string) (Application, error)
	List(ctx context.Context, userID string, f ListFilter, p pagination.Params) ([]Application, int64, error)
	ListAll(ctx context.Context, userID string) ([]Application, error)
	Update(ctx context.Context, app Application) error
	Delete(ctx context.Context, userID, id string) error
	// UpcomingInterviews returns active applications with a future interview
	// date, soonest first.
	UpcomingInterviews(ctx context.Context, userID string, after time.Time, limit int) ([]Application, error)
}
