package reminder

import (
	"context"
	"strings"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/internal/pagination"
)

// CreateInput describes a new reminder.
type CreateInput struct {
	ApplicationID *string
	Title         string
	Description   string
	Type          string
	ReminderDate  time.Time
}

// UpdateInput carries partial edits; nil fields stay untouched. Completion
// state is managed by Complete/Uncomplete, not here.
type UpdateInput struct {
	ApplicationID *string
	Title         *string
	Description   *string
	Type          *string
	ReminderDate  *time.Time
}

// Service enforces reminder business rules over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// SetNow overrides the clock. Tests only.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// Create validates input and persists a new reminder. The due date must be
// in the future; a reminder for the past would never fire.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Reminder, error) {
	const op = "reminder.Create"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Reminder{}, invalid(op, "title is required")
	}
	typ := in.Type
	if typ == "" {
		typ = TypeCustom
	}
	if !validType(typ) {
		return Reminder{}, invalid(op, "type must be interview, deadline, follow-up or custom")
	}

	now := s.now()
	if !in.ReminderDate.After(now) {
		return Reminder{}, invalid(op, "reminderDate must be in the future")
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Reminder{}, identity.OpError{Op: op, Kind: err}
	}

	rem := Reminder{
		ID:            id,
		UserID:        userID,
		ApplicationID: in.ApplicationID,
		Title:         title,
		Description:   in.Description,
		Type:          typ,
		ReminderDate:  in.ReminderDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Reminder, error) {
	return s.store.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter, p pagination.Params) ([]Reminder, int64, error) {
	return s.store.List(ctx, userID, f, p)
}

// Update applies partial edits outside the completion machinery.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Reminder, error) {
	const op = "reminder.Update"

	rem, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return Reminder{}, err
	}

	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		if v == "" {
			return Reminder{}, invalid(op, "title cannot be empty")
		}
		rem.Title = v
	}
	if in.Type != nil {
		if !validType(*in.Type) {
			return Reminder{}, invalid(op, "type must be interview, deadline, follow-up or custom")
		}
		rem.Type = *in.Type
	}
	if in.Description != nil {
		rem.Description = *in.Description
	}
	if in.ApplicationID != nil {
		rem.ApplicationID = in.ApplicationID
	}
	if in.ReminderDate != nil {
		if !in.ReminderDate.After(s.now()) {
			return Reminder{}, invalid(op, "reminderDate must be in the future")
		}
		rem.ReminderDate = *in.ReminderDate
	}

	rem.UpdatedAt = s.now()
	if err := s.store.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// Complete marks a reminder done. Completing an overdue reminder is allowed;
// that is the usual case.
func (s *Service) Complete(ctx context.Context, userID, id string) (Reminder, error) {
	return s.setCompleted(ctx, userID, id, true)
}

// Uncomplete reopens a completed reminder.
func (s *Service) Uncomplete(ctx context.Context, userID, id string) (Reminder, error) {
	return s.setCompleted(ctx, userID, id, false)
}

func (s *Service) setCompleted(ctx context.Context, userID, id string, done bool) (Reminder, error) {
	rem, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		return Reminder{}, err
	}

	now := s.now()
	rem.IsCompleted = done
	if done {
		rem.CompletedAt = &now
	} else {
		rem.CompletedAt = nil
	}
	rem.UpdatedAt = now

	if err := s.store.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

// Upcoming lists incomplete reminders due from now on, soonest first.
func (s *Service) Upcoming(ctx context.Context, userID string, limit int) ([]Reminder, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.Upcoming(ctx, userID, s.now(), limit)
}

// Overdue lists incomplete reminders whose due date has passed.
func (s *Service) Overdue(ctx context.Context, userID string) ([]Reminder, error) {
	return s.store.Overdue(ctx, userID, s.now())
}

// DeleteByApplication removes reminders tied to a deleted application.
func (s *Service) DeleteByApplication(ctx context.Context, userID, applicationID string) (int64, error) {
	return s.store.DeleteByApplication(ctx, userID, applicationID)
}
