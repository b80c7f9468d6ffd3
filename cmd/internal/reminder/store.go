package reminder

import (
	"context"
	"time"

	"placemate/cmd/internal/pagination"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Type string
	// Completed filters on completion state when non-nil.
	Completed *bool
	// ApplicationID restricts to reminders tied to one application.
	ApplicationID string
}

// SortColumns is the ORDER BY whitelist for reminder lists.
var SortColumns = []string{"reminder_date", "created_at"}

// Store is the reminder persistence boundary. All reads and writes are
// scoped by user ID; an ID belonging to another user behaves as missing.
type Store interface {
	Create(ctx context.Context, rem Reminder) error
	GetByID(ctx context.Context, userID, id string) (Reminder, error)
	List(ctx context.Context, userID string, f ListFilter, p pagination.Params) ([]Reminder, int64, error)
	Update(ctx context.Context, rem Reminder) error
	Delete(ctx context.Context, userID, id string) error
	// Upcoming returns incomplete reminders due at or after now, soonest first.
	Upcoming(ctx context.Context, userID string, now time.Time, limit int) ([]Reminder, error)
	// Overdue returns incomplete reminders due before now, most overdue first.
	Overdue(ctx context.Context, userID string, now time.Time) ([]Reminder, error)
	// DeleteByApplication removes every reminder tied to an application.
	DeleteByApplication(ctx context.Context, userID, applicationID string) (int64, error)
}
