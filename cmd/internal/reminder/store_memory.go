package reminder

import (
	"context"
	"sort"
	"sync"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/internal/pagination"
)

// MemoryStore is an in-memory Store for unit tests. Filtering, sorting and
// pagination mirror the Postgres implementation.
type MemoryStore struct {
	mu   sync.Mutex
	rems map[string]Reminder // keyed by reminder ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rems: make(map[string]Reminder)}
}

func (s *MemoryStore) Create(_ context.Context, rem Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rems[rem.ID] = rem
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, userID, id string) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, ok := s.rems[id]
	if !ok || rem.UserID != userID {
		return Reminder{}, identity.NotFoundError{Op: "reminder.GetByID", Resource: "reminder"}
	}
	return rem, nil
}

func (s *MemoryStore) List(_ context.Context, userID string, f ListFilter, p pagination.Params) ([]Reminder, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Reminder
	for _, rem := range s.rems {
		if rem.UserID != userID || !matchesReminder(rem, f) {
			continue
		}
		matched = append(matched, rem)
	}

	sortReminders(matched, p.SortBy, p.Desc)

	total := int64(len(matched))
	start := p.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + p.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) Update(_ context.Context, rem Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rems[rem.ID]
	if !ok || existing.UserID != rem.UserID {
		return identity.NotFoundError{Op: "reminder.Update", Resource: "reminder"}
	}
	s.rems[rem.ID] = rem
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, ok := s.rems[id]
	if !ok || rem.UserID != userID {
		return identity.NotFoundError{Op: "reminder.Delete", Resource: "reminder"}
	}
	delete(s.rems, id)
	return nil
}

func (s *MemoryStore) Upcoming(_ context.Context, userID string, now time.Time, limit int) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rems []Reminder
	for _, rem := range s.rems {
		if rem.UserID != userID || rem.IsCompleted || rem.ReminderDate.Before(now) {
			continue
		}
		rems = append(rems, rem)
	}
	sort.Slice(rems, func(i, j int) bool { return rems[i].ReminderDate.Before(rems[j].ReminderDate) })
	if limit > 0 && len(rems) > limit {
		rems = rems[:limit]
	}
	return rems, nil
}

func (s *MemoryStore) Overdue(_ context.Context, userID string, now time.Time) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rems []Reminder
	for _, rem := range s.rems {
		if rem.UserID != userID || rem.IsCompleted || !rem.ReminderDate.Before(now) {
			continue
		}
		rems = append(rems, rem)
	}
	sort.Slice(rems, func(i, j int) bool { return rems[i].ReminderDate.Before(rems[j].ReminderDate) })
	return rems, nil
}

func (s *MemoryStore) DeleteByApplication(_ context.Context, userID, applicationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rem := range s.rems {
		if rem.UserID == userID && rem.ApplicationID != nil && *rem.ApplicationID == applicationID {
			delete(s.rems, id)
			n++
		}
	}
	return n, nil
}

func matchesReminder(rem Reminder, f ListFilter) bool {
	if f.Type != "" && rem.Type != f.Type {
		return false
	}
	if f.Completed != nil && rem.IsCompleted != *f.Completed {
		return false
	}
	if f.ApplicationID != "" {
		if rem.ApplicationID == nil || *rem.ApplicationID != f.ApplicationID {
			return false
		}
	}
	return true
}

func sortReminders(rems []Reminder, sortBy string, desc bool) {
	less := func(i, j int) bool {
		a, b := rems[i], rems[j]
		switch sortBy {
		case "reminder_date":
			return a.ReminderDate.Before(b.ReminderDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	if desc {
		sort.Slice(rems, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.Slice(rems, less)
}

var _ Store = (*MemoryStore)(nil)
