package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmcampos/tienda/internal/auth"
	"github.com/jmcampos/tienda/internal/users/domain"
	"github.com/jmcampos/tienda/internal/users/ports"
)

// Service handles registration, login and the startup admin seed.
type Service struct {
	repo   ports.UserRepository
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

func NewService(repo ports.UserRepository, tokens *auth.TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a non-admin account. Duplicate email or username is
// rejected before the insert.
func (s *Service) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, reg.Email); err == nil {
		return nil, ports.ErrEmailTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if _, err := s.repo.GetByUsername(ctx, reg.Username); err == nil {
		return nil, ports.ErrUsernameTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(reg, hash)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// LoginResult is a signed token plus the authenticated account.
type LoginResult struct {
	Token string
	User  *domain.User
}

// Login verifies the email/password pair and issues a bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// GetByID resolves an account by id.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureAdmin creates the admin account at startup if it does not exist yet.
// An empty password skips seeding entirely.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if password == "" {
		s.logger.WarnContext(ctx, "admin password not configured, skipping admin seed")
		return nil
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := domain.NewUser(domain.Registration{Username: username, Email: email}, hash)
	admin.IsAdmin = true

	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	s.logger.InfoContext(ctx, "admin account created", "username", username)
	return nil
}
