package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUser indicates a registration payload that fails validation.
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a registered account. PasswordHash is a bcrypt digest, never the
// plaintext password.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Registration carries the fields a new account is created from.
type Registration struct {
	Username string
	Email    string
	Password string
}

func (r Registration) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: malformed email", ErrInvalidUser)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidUser)
	}
	return nil
}

// NewUser creates a non-admin account from a validated registration and a
// pre-computed password hash.
func NewUser(reg Registration, passwordHash string) *User {
	return &User{
		ID:           uuid.NewString(),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: passwordHash,
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}
}
