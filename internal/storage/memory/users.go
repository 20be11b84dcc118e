package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/shelflab/platform/internal/domain/users"
)

// UserRepository is an in-memory implementation of users.Repository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string
}

// NewUserRepository creates an in-memory user repo.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]users.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) FindByID(id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) Save(user users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = newID()
		user.CreatedAt = now
	} else if existing, ok := r.byID[user.ID]; ok && user.CreatedAt.IsZero() {
		user.CreatedAt = existing.CreatedAt
	}
	user.UpdatedAt = now

	r.byID[user.ID] = user
	r.byEmail[strings.ToLower(user.Email)] = user.ID
	return user, nil
}
