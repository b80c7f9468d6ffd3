package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by unit tests. Rotate holds the
// mutex across the remove+insert so its atomicity matches PostgresStore.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]TokenRow // keyed by token hash
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]TokenRow)}
}

func (s *MemoryStore) Add(_ context.Context, row TokenRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.TokenHash] = row
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, userID, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[tokenHash]
	if !ok || row.UserID != userID {
		return false, nil
	}
	delete(s.rows, tokenHash)
	return true, nil
}

func (s *MemoryStore) RemoveAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, row := range s.rows {
		if row.UserID == userID {
			delete(s.rows, hash)
		}
	}
	return nil
}

func (s *MemoryStore) Rotate(_ context.Context, oldHash string, newRow TokenRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[oldHash]
	if !ok || row.UserID != newRow.UserID {
		return ErrTokenNotFound
	}
	delete(s.rows, oldHash)
	s.rows[newRow.TokenHash] = newRow
	return nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.IsZero() {
		now = time.Now().UTC()
	}

	var n int64
	for hash, row := range s.rows {
		if row.ExpiresAt.Before(now) {
			delete(s.rows, hash)
			n++
		}
	}
	return n, nil
}

// Count reports the number of live rows for userID. Test helper.
func (s *MemoryStore) Count(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, row := range s.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n
}

// Has reports whether tokenHash is present. Test helper.
func (s *MemoryStore) Has(tokenHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[tokenHash]
	return ok
}

var _ Store = (*MemoryStore)(nil)
