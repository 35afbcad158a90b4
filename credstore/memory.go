package credstore

import (
	"context"
	"sync"

	tenauth "github.com/fixdesk/tenauth"
)

// MemoryStore is an in-memory credential store for tests and examples.
// Safe for concurrent use; data does not survive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]tenauth.UserRecord
	byEmail map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]tenauth.UserRecord),
		byEmail: make(map[string]int64),
	}
}

// Seed inserts a fully formed record, claiming its email and UserID.
// Intended for test fixtures; CreateUser is the production path.
func (s *MemoryStore) Seed(record tenauth.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[record.UserID] = record
	s.byEmail[record.Email] = record.UserID
	if record.UserID > s.nextID {
		s.nextID = record.UserID
	}
}

// TokenVersion implements tenauth.CredentialStore.
func (s *MemoryStore) TokenVersion(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return 0, tenauth.ErrUserNotFound
	}
	return user.TokenVersion, nil
}

// UserByID implements tenauth.CredentialStore.
func (s *MemoryStore) UserByID(_ context.Context, userID int64) (tenauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return tenauth.UserRecord{}, tenauth.ErrUserNotFound
	}
	return user, nil
}

// UserByEmail implements tenauth.CredentialStore.
func (s *MemoryStore) UserByEmail(_ context.Context, email string) (tenauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return tenauth.UserRecord{}, tenauth.ErrUserNotFound
	}
	return s.users[id], nil
}

// CreateUser implements tenauth.CredentialStore.
func (s *MemoryStore) CreateUser(_ context.Context, input tenauth.CreateUserInput) (tenauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[input.Email]; exists {
		return tenauth.UserRecord{}, tenauth.ErrAccountExists
	}

	s.nextID++
	record := tenauth.UserRecord{
		UserID:             s.nextID,
		Email:              input.Email,
		Name:               input.Name,
		PasswordHash:       input.PasswordHash,
		Role:               input.Role,
		OrganizationID:     input.OrganizationID,
		OrganizationName:   input.OrganizationName,
		SubscriptionStatus: input.SubscriptionStatus,
		SubscriptionExpiry: input.SubscriptionExpiry,
	}
	s.users[record.UserID] = record
	s.byEmail[record.Email] = record.UserID

	return record, nil
}

// UpdatePasswordHash implements tenauth.CredentialStore.
func (s *MemoryStore) UpdatePasswordHash(_ context.Context, userID int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return tenauth.ErrUserNotFound
	}
	user.PasswordHash = hash
	s.users[userID] = user
	return nil
}

// IncrementTokenVersion implements tenauth.CredentialStore.
func (s *MemoryStore) IncrementTokenVersion(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return 0, tenauth.ErrUserNotFound
	}
	user.TokenVersion++
	s.users[userID] = user
	return user.TokenVersion, nil
}

// SetGlobalAdmin flips the stored global-admin flag.
func (s *MemoryStore) SetGlobalAdmin(_ context.Context, userID int64, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return tenauth.ErrUserNotFound
	}
	user.IsGlobalAdmin = admin
	s.users[userID] = user
	return nil
}
