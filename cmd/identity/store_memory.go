package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by unit tests and local tooling.
// It mirrors the PostgresStore contracts, including case-insensitive email
// uniqueness.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*memUser // keyed by user ID
}

type memUser struct {
	user         User
	passwordHash string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memUser)}
}

func (s *MemoryStore) CreateUser(_ context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	norm := NormalizeEmail(in.Email)
	for _, mu := range s.users {
		if mu.user.Email == norm {
			return User{}, ConflictError{Op: op, Field: "email"}
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := NewULID(now)
	if err != nil {
		return User{}, OpError{Op: op, Kind: err}
	}

	u := User{
		ID:             id,
		Email:          norm,
		Name:           in.Name,
		College:        in.College,
		GraduationYear: in.GraduationYear,
		Preferences:    DefaultPreferences(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.users[id] = &memUser{user: u, passwordHash: in.PasswordHash}
	return u, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetByID", Resource: "user"}
	}
	return mu.user, nil
}

func (s *MemoryStore) GetAuthByEmail(_ context.Context, email string) (AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm := NormalizeEmail(email)
	for _, mu := range s.users {
		if mu.user.Email == norm {
			return AuthUser{User: mu.user, PasswordHash: mu.passwordHash}, nil
		}
	}
	return AuthUser{}, NotFoundError{Op: "identity.GetAuthByEmail", Resource: "user"}
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id string, in ProfileUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.UpdateProfile", Resource: "user"}
	}

	if in.Name != nil {
		mu.user.Name = *in.Name
	}
	if in.Avatar != nil {
		mu.user.Avatar = in.Avatar
	}
	if in.College != nil {
		mu.user.College = in.College
	}
	if in.GraduationYear != nil {
		mu.user.GraduationYear = in.GraduationYear
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	mu.user.UpdatedAt = now
	return mu.user, nil
}

func (s *MemoryStore) UpdatePreferences(_ context.Context, id string, p Preferences) (User, error) {
	if err := p.Validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.UpdatePreferences", Resource: "user"}
	}
	mu.user.Preferences = p
	mu.user.UpdatedAt = time.Now().UTC()
	return mu.user, nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[id]
	if !ok {
		return NotFoundError{Op: "identity.UpdatePassword", Resource: "user"}
	}
	mu.passwordHash = passwordHash
	mu.user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return NotFoundError{Op: "identity.DeleteUser", Resource: "user"}
	}
	delete(s.users, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
