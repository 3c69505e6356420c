// Package memory provides an in-process UserStore with the same uniqueness
// semantics as the Postgres store. It backs tests and local runs without a
// database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Farvi-13/Medium-Clone/internal/models"
	"github.com/Farvi-13/Medium-Clone/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store keeps user records in a mutex-guarded map.
type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

// NewUserStore returns an empty in-memory store.
func NewUserStore() *Store {
	return &Store{nextID: 1, users: make(map[int64]models.User)}
}

// CreateUser assigns an id and inserts the record. The uniqueness check and
// insert happen under one lock, mirroring the database constraint: two
// concurrent creates with the same email or username cannot both succeed.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(user.Email, user.Username, 0) {
		return models.User{}, storage.ErrAlreadyExists
	}

	now := time.Now()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.nextID++
	s.users[user.ID] = user
	return stripHash(user), nil
}

// UpdateUser overwrites the record identified by user.ID.
func (s *Store) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if s.conflicts(user.Email, user.Username, user.ID) {
		return models.User{}, storage.ErrAlreadyExists
	}

	if user.PasswordHash == "" {
		user.PasswordHash = stored.PasswordHash
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = time.Now()
	s.users[user.ID] = user
	return stripHash(user), nil
}

// FindByID fetches a user by id, without the password hash.
func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return stripHash(user), nil
}

// FindByEmail fetches a user by email, without the password hash.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return stripHash(user), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByUsername fetches a user by username, without the password hash.
func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return stripHash(user), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByEmailWithPassword fetches a user by email including the stored hash.
func (s *Store) FindByEmailWithPassword(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// conflicts reports whether another record already holds the email or
// username. self is excluded so updates can keep their own values.
func (s *Store) conflicts(email, username string, self int64) bool {
	for id, user := range s.users {
		if id == self {
			continue
		}
		if user.Email == email || user.Username == username {
			return true
		}
	}
	return false
}

func stripHash(user models.User) models.User {
	user.PasswordHash = ""
	return user
}
