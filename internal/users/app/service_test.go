package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampos/tienda/internal/auth"
	"github.com/jmcampos/tienda/internal/users/adapters/memory"
	"github.com/jmcampos/tienda/internal/users/app"
	"github.com/jmcampos/tienda/internal/users/domain"
	"github.com/jmcampos/tienda/internal/users/ports"
)

func newService() (*app.Service, *memory.Repository) {
	repo := memory.NewRepository()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.NewService(repo, tokens, logger), repo
}

func validRegistration() domain.Registration {
	return domain.Registration{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "hunter2hunter2",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a non-admin user with a hashed password", func(t *testing.T) {
		service, _ := newService()

		user, err := service.Register(ctx, validRegistration())
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.False(t, user.IsAdmin)
		assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		service, _ := newService()

		_, err := service.Register(ctx, validRegistration())
		require.NoError(t, err)

		second := validRegistration()
		second.Username = "other"
		_, err = service.Register(ctx, second)
		assert.ErrorIs(t, err, ports.ErrEmailTaken)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		service, _ := newService()

		_, err := service.Register(ctx, validRegistration())
		require.NoError(t, err)

		second := validRegistration()
		second.Email = "other@example.com"
		_, err = service.Register(ctx, second)
		assert.ErrorIs(t, err, ports.ErrUsernameTaken)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		service, _ := newService()

		reg := validRegistration()
		reg.Password = "short"
		_, err := service.Register(ctx, reg)
		assert.ErrorIs(t, err, domain.ErrInvalidUser)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a verifiable token", func(t *testing.T) {
		service, _ := newService()
		_, err := service.Register(ctx, validRegistration())
		require.NoError(t, err)

		result, err := service.Login(ctx, "maria@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "maria", result.User.Username)

		identity, err := auth.NewTokenIssuer("test-secret", time.Hour).Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, identity.UserID)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		service, _ := newService()
		_, err := service.Register(ctx, validRegistration())
		require.NoError(t, err)

		_, wrongPassword := service.Login(ctx, "maria@example.com", "nope-nope-nope")
		_, unknownEmail := service.Login(ctx, "ghost@example.com", "hunter2hunter2")

		assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an admin once", func(t *testing.T) {
		service, repo := newService()

		err := service.EnsureAdmin(ctx, "admin", "admin@example.com", "sup3rsecret")
		require.NoError(t, err)

		first, err := repo.GetByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.True(t, first.IsAdmin)

		err = service.EnsureAdmin(ctx, "admin", "admin@example.com", "sup3rsecret")
		require.NoError(t, err)

		second, err := repo.GetByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("skips when no password is configured", func(t *testing.T) {
		service, repo := newService()

		err := service.EnsureAdmin(ctx, "admin", "admin@example.com", "")
		require.NoError(t, err)

		_, err = repo.GetByEmail(ctx, "admin@example.com")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})
}
