package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository is a Repository for tests and for running without a
// database configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    map[string]User{},
		byEmail: map[string]string{},
	}
}

func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *InMemoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return ErrAlreadyExists
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}
