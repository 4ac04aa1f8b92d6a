package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmcampos/tienda/internal/users/domain"
	"github.com/jmcampos/tienda/internal/users/ports"
)

// Repository is an in-memory user store used in unit tests.
type Repository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewRepository() *Repository {
	return &Repository{users: make(map[string]domain.User)}
}

func (r *Repository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *Repository) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}

	return nil, fmt.Errorf("user: %w", ports.ErrNotFound)
}
