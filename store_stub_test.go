package tenauth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// stubStore is an in-memory CredentialStore with failure injection and
// call counting for tests.
type stubStore struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]UserRecord
	byEmail      map[string]int64
	versionCalls int
	failAll      error
}

func newStubStore() *stubStore {
	return &stubStore{
		users:   make(map[int64]UserRecord),
		byEmail: make(map[string]int64),
	}
}

func (s *stubStore) seed(user UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
	s.byEmail[user.Email] = user.UserID
	if user.UserID > s.nextID {
		s.nextID = user.UserID
	}
}

func (s *stubStore) setFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = err
}

func (s *stubStore) tokenVersionCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versionCalls
}

func (s *stubStore) TokenVersion(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versionCalls++
	if s.failAll != nil {
		return 0, s.failAll
	}
	user, ok := s.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	return user.TokenVersion, nil
}

func (s *stubStore) UserByID(_ context.Context, userID int64) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	user, ok := s.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (s *stubStore) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	id, ok := s.byEmail[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *stubStore) CreateUser(_ context.Context, input CreateUserInput) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return UserRecord{}, s.failAll
	}
	if _, exists := s.byEmail[input.Email]; exists {
		return UserRecord{}, ErrAccountExists
	}
	s.nextID++
	user := UserRecord{
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
	s.users[user.UserID] = user
	s.byEmail[user.Email] = user.UserID
	return user, nil
}

func (s *stubStore) UpdatePasswordHash(_ context.Context, userID int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	s.users[userID] = user
	return nil
}

func (s *stubStore) IncrementTokenVersion(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return 0, s.failAll
	}
	user, ok := s.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	user.TokenVersion++
	s.users[userID] = user
	return user.TokenVersion, nil
}

var errStoreDown = errors.New("connection refused")

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}
