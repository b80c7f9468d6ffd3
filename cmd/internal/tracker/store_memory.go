package tracker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"placemate/cmd/identity"
	"placemate/cmd/internal/pagination"
)

// MemoryStore is an in-memory Store for unit tests. Filtering, sorting and
// pagination mirror the Postgres implementation.
type MemoryStore struct {
	mu   sync.Mutex
	apps map[string]Application // keyed by application ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: make(map[string]Application)}
}

func (s *MemoryStore) Create(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = app
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, userID, id string) (Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return Application{}, identity.NotFoundError{Op: "tracker.GetByID", Resource: "application"}
	}
	return a, nil
}

func (s *MemoryStore) List(_ context.Context, userID string, f ListFilter, p pagination.Params) ([]Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Application
	for _, a := range s.apps {
		if a.UserID != userID || !matches(a, f) {
			continue
		}
		matched = append(matched, a)
	}

	sortApps(matched, p.SortBy, p.Desc)

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

func (s *MemoryStore) ListAll(_ context.Context, userID string) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apps []Application
	for _, a := range s.apps {
		if a.UserID == userID {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedDate.Before(apps[j].AppliedDate) })
	return apps, nil
}

func (s *MemoryStore) Update(_ context.Context, app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return identity.NotFoundError{Op: "tracker.Update", Resource: "application"}
	}
	s.apps[app.ID] = app
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return identity.NotFoundError{Op: "tracker.Delete", Resource: "application"}
	}
	delete(s.apps, id)
	return nil
}

func (s *MemoryStore) UpcomingInterviews(_ context.Context, userID string, after time.Time, limit int) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apps []Application
	for _, a := range s.apps {
		if a.UserID != userID || a.Status != StatusActive || a.NextInterviewDate == nil {
			continue
		}
		if a.NextInterviewDate.Before(after) {
			continue
		}
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].NextInterviewDate.Before(*apps[j].NextInterviewDate)
	})
	if limit > 0 && len(apps) > limit {
		apps = apps[:limit]
	}
	return apps, nil
}

func matches(a Application, f ListFilter) bool {
	if f.Stage != "" && a.Stage != f.Stage {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.CompanyName), needle) &&
			!strings.Contains(strings.ToLower(a.Role), needle) {
			return false
		}
	}
	if f.AppliedFrom != nil && a.AppliedDate.Before(*f.AppliedFrom) {
		return false
	}
	if f.AppliedTo != nil && a.AppliedDate.After(*f.AppliedTo) {
		return false
	}
	return true
}

func sortApps(apps []Application, sortBy string, desc bool) {
	less := func(i, j int) bool {
		a, b := apps[i], apps[j]
		switch sortBy {
		case "applied_date":
			return a.AppliedDate.Before(b.AppliedDate)
		case "company_name":
			return a.CompanyName < b.CompanyName
		case "deadline":
			switch {
			case a.Deadline == nil:
				return false
			case b.Deadline == nil:
				return true
			default:
				return a.Deadline.Before(*b.Deadline)
			}
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	if desc {
		sort.Slice(apps, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.Slice(apps, less)
}

var _ Store = (*MemoryStore)(nil)
