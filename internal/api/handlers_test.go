package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/api"
	"github.com/phrazzld/accounts-api/internal/api/middleware"
	"github.com/phrazzld/accounts-api/internal/mocks"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/platform/memory"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/phrazzld/accounts-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Meta    json.RawMessage `json:"meta"`
	TraceID string          `json:"trace_id"`
}

type testAPI struct {
	router   http.Handler
	accounts *memory.AccountStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := memory.NewAccountStore(log)
	accountSvc := service.NewAccountService(accounts, auth.RequireTestCodec(t), log)
	return &testAPI{
		router:   newRouter(accountSvc, service.NewSessionService(accountSvc, auth.RequireTestJWTService(t), log), log),
		accounts: accounts,
	}
}

func newRouter(accountSvc service.AccountService, sessions service.SessionService, log *slog.Logger) http.Handler {
	accountHandler := api.NewAccountHandler(accountSvc, log)
	authHandler := api.NewAuthHandler(sessions, accountSvc, log)
	authMiddleware := middleware.NewAuthMiddleware(sessions)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Get("/health", api.NewHealthHandler("user-service", nil).Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", accountHandler.CreateAccount)
			r.Get("/", accountHandler.ListAccounts)
			r.Post("/validate", accountHandler.ValidateCredentials)
			r.Get("/{user_id}", accountHandler.GetAccount)
			r.Put("/{user_id}", accountHandler.UpdateAccount)
			r.Put("/{user_id}/push-token", accountHandler.UpdatePushToken)
			r.Delete("/{user_id}", accountHandler.DeleteAccount)
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/verify-token", authHandler.VerifyToken)
			r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
		})
	})
	return r
}

func (a *testAPI) do(t *testing.T, method, path string, body any, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func createBody(email string) map[string]any {
	return map[string]any{
		"name":        "Ada Lovelace",
		"email":       email,
		"password":    "password123",
		"preferences": map[string]bool{"email": true, "push": false},
	}
}

func (a *testAPI) createAccount(t *testing.T, email string) api.AccountResponse {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/api/v1/users", createBody(email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var account api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &account))
	return account
}

func TestCreateAccount(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)

		rec, env := a.do(t, http.MethodPost, "/api/v1/users", createBody("ada@example.com"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "User created successfully", env.Message)
		assert.JSONEq(t, `{}`, string(env.Meta))
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "$2a$")

		var account api.AccountResponse
		require.NoError(t, json.Unmarshal(env.Data, &account))
		assert.NotEqual(t, uuid.Nil, account.ID)
		assert.Equal(t, "", account.PushToken)
		require.NotNil(t, account.Preferences)
		assert.True(t, account.Preferences.EmailNotifications)
		assert.False(t, account.Preferences.PushNotifications)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.createAccount(t, "dup@example.com")

		rec, env := a.do(t, http.MethodPost, "/api/v1/users", createBody("dup@example.com"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Email already exists", env.Error)
		assert.Equal(t, "Failed to create user", env.Message)
		assert.NotEmpty(t, env.TraceID)
		assert.Equal(t, 1, a.accounts.Len())
	})

	invalid := []struct {
		name      string
		body      any
		wantError string
	}{
		{
			name: "missing preferences",
			body: map[string]any{
				"name": "Ada", "email": "ada@example.com", "password": "password123",
			},
			wantError: "Invalid preferences: required field",
		},
		{
			name: "partial preferences",
			body: map[string]any{
				"name": "Ada", "email": "ada@example.com", "password": "password123",
				"preferences": map[string]bool{"email": true},
			},
			wantError: "Invalid preferences.push: required field",
		},
		{
			name:      "short password",
			body:      map[string]any{"name": "Ada", "email": "ada@example.com", "password": "short", "preferences": map[string]bool{"email": true, "push": true}},
			wantError: "Invalid password: too short",
		},
		{
			name:      "bad email",
			body:      map[string]any{"name": "Ada", "email": "nope", "password": "password123", "preferences": map[string]bool{"email": true, "push": true}},
			wantError: "Invalid email: invalid email format",
		},
		{name: "empty body", body: "", wantError: "Request body is required"},
		{name: "malformed body", body: `{"name":`, wantError: "Invalid request format"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := newTestAPI(t)

			rec, env := a.do(t, http.MethodPost, "/api/v1/users", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, 0, a.accounts.Len())
		})
	}
}

func TestListAccounts(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		a.createAccount(t, email)
	}

	rec, env := a.do(t, http.MethodGet, "/api/v1/users?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Users retrieved successfully", env.Message)

	var accounts []api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "c@example.com", accounts[0].Email)

	var meta service.Pagination
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.Equal(t, service.Pagination{
		Total: 3, Limit: 2, Page: 2, TotalPages: 2, HasNext: false, HasPrevious: true,
	}, meta)

	rec, _ = a.do(t, http.MethodGet, "/api/v1/users?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAccount(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	created := a.createAccount(t, "get@example.com")

	rec, env := a.do(t, http.MethodGet, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)

	rec, env = a.do(t, http.MethodGet, "/api/v1/users/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env.Error)

	rec, env = a.do(t, http.MethodGet, "/api/v1/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid user_id: has invalid format", env.Error)
}

func TestUpdateAccount(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	created := a.createAccount(t, "upd@example.com")
	a.createAccount(t, "taken@example.com")
	path := "/api/v1/users/" + created.ID.String()

	rec, env := a.do(t, http.MethodPut, path, map[string]any{
		"name":        "Augusta Ada",
		"preferences": map[string]bool{"email": false, "push": true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User updated successfully", env.Message)

	var updated api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Augusta Ada", updated.Name)
	assert.Equal(t, "upd@example.com", updated.Email)
	assert.False(t, updated.Preferences.EmailNotifications)
	assert.True(t, updated.Preferences.PushNotifications)

	rec, env = a.do(t, http.MethodPut, path, map[string]any{"email": "taken@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", env.Error)

	rec, _ = a.do(t, http.MethodPut, "/api/v1/users/"+uuid.NewString(), map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAccount_EmptyPushTokenKeepsStored(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	body := createBody("keep@example.com")
	body["push_token"] = "device-1"
	rec, env := a.do(t, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "device-1", created.PushToken)

	rec, env = a.do(t, http.MethodPut, "/api/v1/users/"+created.ID.String(), map[string]any{"push_token": ""})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "device-1", updated.PushToken)

	rec, env = a.do(t, http.MethodGet, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "device-1", fetched.PushToken)
}

func TestUpdatePushToken(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	created := a.createAccount(t, "push@example.com")
	path := "/api/v1/users/" + created.ID.String() + "/push-token"

	rec, env := a.do(t, http.MethodPut, path, map[string]any{"push_token": "device-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Push token updated successfully", env.Message)
	var got api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "device-1", got.PushToken)

	rec, env = a.do(t, http.MethodPut, path, map[string]any{"push_token": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "", got.PushToken)

	rec, _ = a.do(t, http.MethodPut, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	created := a.createAccount(t, "val@example.com")

	rec, env := a.do(t, http.MethodPost, "/api/v1/users/validate",
		map[string]string{"email": "val@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User validated successfully", env.Message)
	var got api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)

	for _, body := range []map[string]string{
		{"email": "val@example.com", "password": "wrong-password"},
		{"email": "unknown@example.com", "password": "password123"},
	} {
		rec, env = a.do(t, http.MethodPost, "/api/v1/users/validate", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", env.Error)
		assert.Equal(t, "Validation failed", env.Message)
	}
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	created := a.createAccount(t, "del@example.com")
	path := "/api/v1/users/" + created.ID.String()

	rec, env := a.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted successfully", env.Message)
	assert.JSONEq(t, `{"message":"Account deleted successfully"}`, string(env.Data))
	assert.Equal(t, 0, a.accounts.Len())

	rec, _ = a.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginVerifyAndMe(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	created := a.createAccount(t, "login@example.com")

	rec, env := a.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "login@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Login successful", env.Message)

	var login api.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.AccessToken)
	assert.True(t, login.ExpiresAt.After(time.Now()))
	assert.Equal(t, created.ID, login.User.ID)

	rec, env = a.do(t, http.MethodPost, "/api/v1/auth/verify-token", map[string]string{"token": login.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Token is valid", env.Message)
	var claims api.TokenClaimsResponse
	require.NoError(t, json.Unmarshal(env.Data, &claims))
	assert.Equal(t, created.ID.String(), claims.Sub)
	assert.Equal(t, "login@example.com", claims.Email)

	rec, env = a.do(t, http.MethodPost, "/api/v1/auth/verify-token", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", env.Error)

	rec, env = a.do(t, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var me api.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, created.ID, me.ID)

	rec, _ = a.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = a.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "login@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_DeletedAccount(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)

	header := auth.GenerateAuthHeaderForTestingT(t, uuid.New(), "ghost@example.com")
	rec, env := a.do(t, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", header)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", env.Error)
}

func TestStorageUnavailable(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := &mocks.TestifyMockAccountStore{}
	accounts.On("GetByID", mock.Anything, mock.Anything).Return(nil, store.ErrStorageUnavailable)

	accountSvc := service.NewAccountService(accounts, &mocks.MockCredentialCodec{}, log)
	sessions := service.NewSessionService(accountSvc, &mocks.MockJWTService{}, log)
	a := &testAPI{router: newRouter(accountSvc, sessions, log)}

	rec, env := a.do(t, http.MethodGet, "/api/v1/users/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Service temporarily unavailable", env.Error)
	accounts.AssertExpectations(t)
}

func TestSecretsNeverLogged(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewTestLogger(t)
	accounts := memory.NewAccountStore(log)
	accountSvc := service.NewAccountService(accounts, auth.RequireTestCodec(t), log)
	sessions := service.NewSessionService(accountSvc, auth.RequireTestJWTService(t), log)
	a := &testAPI{router: newRouter(accountSvc, sessions, log), accounts: accounts}

	a.createAccount(t, "secret@example.com")
	a.do(t, http.MethodPost, "/api/v1/users", createBody("secret@example.com"))
	a.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "secret@example.com", "password": "wrong-password-9"})
	rec, env := a.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "secret@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var login api.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	stored, err := accounts.GetByEmail(t.Context(), "secret@example.com")
	require.NoError(t, err)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	logger.AssertLogNotContains(t, buf, "password123")
	logger.AssertLogNotContains(t, buf, "wrong-password-9")
	logger.AssertLogNotContains(t, buf, stored.HashedPassword)
	logger.AssertLogNotContains(t, buf, login.AccessToken)
}
