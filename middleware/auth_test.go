package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewellery-backend/utils"
)

func newTestToken(t *testing.T, tm *utils.TokenManager, role string) string {
	t.Helper()
	token, err := tm.Generate("64f1a2b3c4d5e6f708091a0b", role)
	require.NoError(t, err)
	return token
}

func TestAuth(t *testing.T) {
	tm := utils.NewTokenManager("test-secret", time.Hour)

	var gotClaims *utils.Claims
	handler := Auth(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		require.True(t, ok)
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + newTestToken(t, tm, "user"), http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, "64f1a2b3c4d5e6f708091a0b", gotClaims.UserID)
			}
		})
	}
}

func TestAuthWrongSecret(t *testing.T) {
	tm := utils.NewTokenManager("test-secret", time.Hour)
	other := utils.NewTokenManager("different-secret", time.Hour)

	handler := Auth(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+newTestToken(t, other, "user"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tm := utils.NewTokenManager("test-secret", time.Hour)

	handler := Auth(tm)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("admin allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/items", nil)
		req.Header.Set("Authorization", "Bearer "+newTestToken(t, tm, "admin"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/items", nil)
		req.Header.Set("Authorization", "Bearer "+newTestToken(t, tm, "user"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated rejected before role check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/items", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
