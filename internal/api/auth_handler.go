package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/accounts-api/internal/api/middleware"
	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service"
)

// AuthHandler serves the /api/v1/auth endpoints.
type AuthHandler struct {
	sessions service.SessionService
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	sessions service.SessionService,
	accounts service.AccountService,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		sessions: sessions,
		accounts: accounts,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const failure = "Login failed"

	var req CredentialsRequest
	if !decodeAndValidate(w, r, &req, failure) {
		return
	}

	result, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Login successful", LoginResponse{
		AccessToken: result.Token,
		ExpiresAt:   result.ExpiresAt,
		User:        toAccountResponse(result.Account),
	}, nil)
}

// VerifyToken handles POST /api/v1/auth/verify-token.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	const failure = "Invalid token"

	var req VerifyTokenRequest
	if !decodeAndValidate(w, r, &req, failure) {
		return
	}

	claims, err := h.sessions.VerifyToken(r.Context(), req.Token)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Token is valid", toClaimsResponse(claims), nil)
}

// Me handles GET /api/v1/auth/me. It requires the Authenticate middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to retrieve user"

	claims, ok := middleware.GetClaims(r)
	if !ok {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("claims missing from authenticated request")
		HandleAPIError(w, r, service.ErrInvalidToken, failure)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), claims.AccountID)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "User retrieved successfully",
		toAccountResponse(account), nil)
}
