package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webnexa/studio-api/internal/auth"
	"github.com/webnexa/studio-api/internal/http/middleware"
	"github.com/webnexa/studio-api/internal/user"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuth_MissingHeader(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	middleware.Auth(tokens)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_BadToken(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	middleware.Auth(tokens)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	signer := auth.NewTokenProvider("other-secret", time.Hour)
	tokens := auth.NewTokenProvider("test-secret", time.Hour)

	signed, err := signer.Sign(&user.User{ID: 1, Role: user.RoleClient})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	middleware.Auth(tokens)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", time.Hour)

	signed, err := tokens.Sign(&user.User{ID: 7, Name: "Acme Corp", Role: user.RoleClient})
	require.NoError(t, err)

	var gotClaims *auth.Claims

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = middleware.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	middleware.Auth(tokens)(capture).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, int64(7), gotClaims.UserID)
	assert.Equal(t, user.RoleClient, gotClaims.Role)
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenProvider("test-secret", time.Hour)

	adminOnly := middleware.Auth(tokens)(
		middleware.RequireRole(user.RoleAdmin)(http.HandlerFunc(okHandler)),
	)

	t.Run("AdminAllowed", func(t *testing.T) {
		signed, err := tokens.Sign(&user.User{ID: 1, Role: user.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		adminOnly.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("ClientForbidden", func(t *testing.T) {
		signed, err := tokens.Sign(&user.User{ID: 7, Role: user.RoleClient})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		adminOnly.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
