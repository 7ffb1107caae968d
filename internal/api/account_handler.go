package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/accounts-api/internal/api/shared"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service"
)

// AccountHandler serves the /api/v1/users endpoints.
type AccountHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts service.AccountService, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AccountHandler")
	}

	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "account_handler")),
	}
}

// CreateAccount handles POST /api/v1/users.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to create user"

	var req CreateAccountRequest
	if !decodeAndValidate(w, r, &req, failure) {
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), toCreateInput(req))
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, "User created successfully",
		toAccountResponse(account), nil)
}

// ListAccounts handles GET /api/v1/users?page=&limit=.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to retrieve users"

	page, err := getQueryInt(r, "page")
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}
	limit, err := getQueryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	list, err := h.accounts.ListAccounts(r.Context(), page, limit)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Users retrieved successfully",
		toAccountResponses(list.Accounts), list.Pagination)
}

// GetAccount handles GET /api/v1/users/{user_id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to retrieve user"

	id, err := getPathUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "User retrieved successfully",
		toAccountResponse(account), nil)
}

// UpdateAccount handles PUT /api/v1/users/{user_id}.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to update user"

	id, err := getPathUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	var req UpdateAccountRequest
	if !decodeAndValidate(w, r, &req, failure) {
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), id, toAccountPatch(req))
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "User updated successfully",
		toAccountResponse(account), nil)
}

// UpdatePushToken handles PUT /api/v1/users/{user_id}/push-token.
func (h *AccountHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to update push token"

	id, err := getPathUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	var req PushTokenRequest
	if !decodeAndValidate(w, r, &req, failure) {
		return
	}

	account, err := h.accounts.UpdatePushToken(r.Context(), id, *req.PushToken)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Push token updated successfully",
		toAccountResponse(account), nil)
}

// ValidateCredentials handles POST /api/v1/users/validate.
func (h *AccountHandler) ValidateCredentials(w http.ResponseWriter, r *http.Request) {
	const failure = "Validation failed"

	var req CredentialsRequest
	if !decodeAndValidate(w, r, &req, failure) {
		return
	}

	account, err := h.accounts.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "User validated successfully",
		toAccountResponse(account), nil)
}

// DeleteAccount handles DELETE /api/v1/users/{user_id}.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to delete user"

	id, err := getPathUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	result, err := h.accounts.DeleteAccount(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account removed via API",
		slog.String("account_id", id.String()))

	shared.RespondWithData(w, r, http.StatusOK, "User deleted successfully", result, nil)
}
