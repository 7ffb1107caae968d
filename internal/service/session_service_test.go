package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/accounts-api/internal/mocks"
	"github.com/phrazzld/accounts-api/internal/platform/memory"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T, tokens auth.JWTService) (*service.SessionServiceImpl, *service.AccountServiceImpl) {
	t.Helper()
	accounts := service.NewAccountService(memory.NewAccountStore(nil), auth.RequireTestCodec(t), nil)
	return service.NewSessionService(accounts, tokens, nil), accounts
}

func TestLogin(t *testing.T) {
	t.Parallel()
	sessions, accounts := newTestSessionService(t, auth.RequireTestJWTService(t))
	created, err := accounts.CreateAccount(context.Background(), validInput("session@example.com"))
	require.NoError(t, err)

	result, err := sessions.Login(context.Background(), "session@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, created.ID, result.Account.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	claims, err := sessions.VerifyToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.AccountID)
	assert.Equal(t, created.ID.String(), claims.Subject)
	assert.Equal(t, "session@example.com", claims.Email)
	assert.Equal(t, created.Name, claims.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	issued := false
	tokens := &mocks.MockJWTService{
		GenerateTokenFn: func(context.Context, auth.TokenSubject) (string, time.Time, error) {
			issued = true
			return "token", time.Now(), nil
		},
	}
	sessions, accounts := newTestSessionService(t, tokens)
	_, err := accounts.CreateAccount(context.Background(), validInput("login@example.com"))
	require.NoError(t, err)

	_, err = sessions.Login(context.Background(), "login@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = sessions.Login(context.Background(), "unknown@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	assert.False(t, issued, "no token is issued for bad credentials")
}

func TestLogin_TokenFailure(t *testing.T) {
	t.Parallel()
	signErr := errors.New("signing failed")
	sessions, accounts := newTestSessionService(t, &mocks.MockJWTService{Err: signErr})
	_, err := accounts.CreateAccount(context.Background(), validInput("sign@example.com"))
	require.NoError(t, err)

	_, err = sessions.Login(context.Background(), "sign@example.com", "password123")
	assert.ErrorIs(t, err, signErr)
	assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tokenErr error
	}{
		{name: "expired", tokenErr: auth.ErrExpiredToken},
		{name: "invalid", tokenErr: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens := &mocks.MockJWTService{
				ValidateTokenFn: func(context.Context, string) (*auth.Claims, error) {
					return nil, tt.tokenErr
				},
			}
			sessions, _ := newTestSessionService(t, tokens)

			claims, err := sessions.VerifyToken(context.Background(), "some-token")
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, service.ErrInvalidToken)
			assert.ErrorIs(t, err, tt.tokenErr)
		})
	}

	t.Run("garbage with real service", func(t *testing.T) {
		t.Parallel()
		sessions, _ := newTestSessionService(t, auth.RequireTestJWTService(t))
		_, err := sessions.VerifyToken(context.Background(), "garbage")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
