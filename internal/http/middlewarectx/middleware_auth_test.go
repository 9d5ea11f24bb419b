package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libjwt "github.com/magabrotheeeer/entitlement-service/internal/lib/jwt"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func identityEcho(t *testing.T, captured **models.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	maker := libjwt.NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("u1", "reader", "admin")
	require.NoError(t, err)

	var got *models.Identity
	handler := JWTMiddleware(maker, newNoopLogger())(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UID)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	maker := libjwt.NewJWTMaker("secret", time.Hour)

	var got *models.Identity
	handler := JWTMiddleware(maker, newNoopLogger())(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, got)
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	maker := libjwt.NewJWTMaker("secret", time.Hour)
	other := libjwt.NewJWTMaker("other", time.Hour)
	token, err := other.GenerateToken("u1", "reader", "user")
	require.NoError(t, err)

	var got *models.Identity
	handler := JWTMiddleware(maker, newNoopLogger())(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTMiddleware(t *testing.T) {
	maker := libjwt.NewJWTMaker("secret", time.Hour)

	t.Run("без токена пропускает анонимный запрос", func(t *testing.T) {
		var got *models.Identity
		handler := OptionalJWTMiddleware(maker, newNoopLogger())(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/check", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got)
	})

	t.Run("с токеном добавляет идентичность", func(t *testing.T) {
		token, err := maker.GenerateToken("u2", "reader", "user")
		require.NoError(t, err)

		var got *models.Identity
		handler := OptionalJWTMiddleware(maker, newNoopLogger())(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/check", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, "u2", got.UID)
	})

	t.Run("невалидный токен считается анонимным", func(t *testing.T) {
		var got *models.Identity
		handler := OptionalJWTMiddleware(maker, newNoopLogger())(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/check", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, got)
	})
}
