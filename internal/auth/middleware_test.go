package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampos/tienda/internal/auth"
)

func identityEcho(t *testing.T, got *auth.Identity, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := auth.IdentityFrom(r.Context()); ok {
			*got = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	t.Run("rejects missing token", func(t *testing.T) {
		var called bool
		var got auth.Identity
		handler := auth.Middleware(issuer, identityEcho(t, &got, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("rejects non-bearer header", func(t *testing.T) {
		var called bool
		var got auth.Identity
		handler := auth.Middleware(issuer, identityEcho(t, &got, &called))

		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("attaches the verified identity", func(t *testing.T) {
		var called bool
		var got auth.Identity
		handler := auth.Middleware(issuer, identityEcho(t, &got, &called))

		token, err := issuer.Issue(auth.Identity{UserID: "user-1", Username: "maria"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.Equal(t, "user-1", got.UserID)
	})
}

func TestOptionalMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	t.Run("anonymous requests pass through", func(t *testing.T) {
		var called bool
		var got auth.Identity
		handler := auth.OptionalMiddleware(issuer, identityEcho(t, &got, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.Empty(t, got.UserID)
	})

	t.Run("invalid token is still rejected", func(t *testing.T) {
		var called bool
		var got auth.Identity
		handler := auth.OptionalMiddleware(issuer, identityEcho(t, &got, &called))

		req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		var called bool
		var got auth.Identity
		handler := auth.OptionalMiddleware(issuer, identityEcho(t, &got, &called))

		token, err := issuer.Issue(auth.Identity{UserID: "user-1", Username: "maria"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", got.UserID)
	})
}
