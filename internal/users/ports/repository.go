package ports

import (
	"context"
	"errors"

	"github.com/jmcampos/tienda/internal/users/domain"
)

var (
	// ErrNotFound indicates a user id or email that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
