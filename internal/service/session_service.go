package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service/auth"
)

// SessionService issues and verifies access tokens. It keeps no session
// state: a token stays valid until it expires.
type SessionService interface {
	// Login checks the credentials and issues a token for the account.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// VerifyToken returns the claims of a valid token or ErrInvalidToken.
	VerifyToken(ctx context.Context, token string) (*auth.Claims, error)
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// SessionServiceImpl implements the SessionService interface
type SessionServiceImpl struct {
	accounts AccountService
	tokens   auth.JWTService
	logger   *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(accounts AccountService, tokens auth.JWTService, logger *slog.Logger) *SessionServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionServiceImpl{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger.With("component", "session_service"),
	}
}

var _ SessionService = (*SessionServiceImpl)(nil)

// Login implements SessionService.Login
func (s *SessionServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accounts.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(ctx, auth.TokenSubject{
		ID:    account.ID,
		Email: account.Email,
		Name:  account.Name,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to issue token",
			"error", err,
			"account_id", account.ID)
		return nil, NewAccountServiceError("login", "failed to issue token", nil, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("login succeeded", "account_id", account.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// VerifyToken implements SessionService.VerifyToken
func (s *SessionServiceImpl) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, NewAccountServiceError("verify_token", "token rejected", ErrInvalidToken, err)
	}
	return claims, nil
}
