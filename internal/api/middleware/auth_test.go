package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/api/middleware"
	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(ctx context.Context, token string) (*auth.Claims, error)

func (f verifierFunc) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	return f(ctx, token)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()
	validClaims := &auth.Claims{
		AccountID: accountID,
		Subject:   accountID.String(),
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	verifier := verifierFunc(func(_ context.Context, token string) (*auth.Claims, error) {
		switch token {
		case "good":
			return validClaims, nil
		case "expired":
			return nil, service.NewAccountServiceError("verify_token", "token rejected",
				service.ErrInvalidToken, auth.ErrExpiredToken)
		case "broken":
			return nil, errors.New("verifier exploded")
		default:
			return nil, service.NewAccountServiceError("verify_token", "token rejected",
				service.ErrInvalidToken, auth.ErrInvalidToken)
		}
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantNext   bool
	}{
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantNext: true},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK, wantNext: true},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: "Authorization header required"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "Authorization header required"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantBody: "Authorization header required"},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantBody: "Invalid token"},
		{name: "expired token", header: "Bearer expired", wantStatus: http.StatusUnauthorized, wantBody: "Token expired"},
		{name: "verifier failure", header: "Bearer broken", wantStatus: http.StatusInternalServerError, wantBody: "Authentication error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true

				claims, ok := middleware.GetClaims(r)
				require.True(t, ok)
				assert.Equal(t, accountID, claims.AccountID)
				assert.Equal(t, "alice@example.com", claims.Email)

				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			middleware.NewAuthMiddleware(verifier).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthenticate_LogsMissingToken(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewTestLogger(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	rec := httptest.NewRecorder()

	middleware.NewAuthMiddleware(verifierFunc(func(context.Context, string) (*auth.Claims, error) {
		t.Fatal("verifier must not run without a token")
		return nil, nil
	})).Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, auth.ErrMissingToken.Error(), entries[0]["error"])
	assert.EqualValues(t, http.StatusUnauthorized, entries[0]["status_code"])
}

func TestGetClaims_Missing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middleware.GetClaims(req)
	assert.False(t, ok)

	anonymous := context.WithValue(req.Context(), shared.ClaimsContextKey, &auth.Claims{Email: "x@example.com"})
	_, ok = middleware.GetClaims(req.WithContext(anonymous))
	assert.False(t, ok, "claims without an account ID are rejected")
}
