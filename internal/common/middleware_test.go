package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	var gotID uint64
	var gotName string
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = UserIDFromContext(r.Context())
		gotName, _ = UsernameFromContext(r.Context())
	})
	handler := AuthMiddleware(next)

	t.Run("valid token passes identity through", func(t *testing.T) {
		called = false
		token, err := GenerateToken(7, "bob")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/activity/feed", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, called)
		require.Equal(t, uint64(7), gotID)
		require.Equal(t, "bob", gotName)
	})

	t.Run("missing header", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/activity/feed", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, called)
	})

	t.Run("malformed header", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/activity/feed", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, called)
	})

	t.Run("invalid token", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/activity/feed", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, called)
	})
}

func TestWithUser(t *testing.T) {
	ctx := WithUser(context.Background(), 3, "carol")

	id, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, uint64(3), id)

	name, ok := UsernameFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "carol", name)
}
