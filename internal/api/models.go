package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
)

// PreferencesRequest is the notification settings block of a request.
type PreferencesRequest struct {
	Email *bool `json:"email" validate:"required"`
	Push  *bool `json:"push" validate:"required"`
}

func (p *PreferencesRequest) flags() *domain.PreferenceFlags {
	if p == nil {
		return nil
	}
	return &domain.PreferenceFlags{Email: *p.Email, Push: *p.Push}
}

// CreateAccountRequest is the body of POST /api/v1/users.
type CreateAccountRequest struct {
	Name        string              `json:"name" validate:"required"`
	Email       string              `json:"email" validate:"required,email"`
	Password    string              `json:"password" validate:"required,min=8,max=72"`
	PushToken   *string             `json:"push_token"`
	Preferences *PreferencesRequest `json:"preferences" validate:"required"`
}

// UpdateAccountRequest is the body of PUT /api/v1/users/{user_id}.
// Absent fields are left unchanged, and so is an empty push_token.
type UpdateAccountRequest struct {
	Name        *string             `json:"name" validate:"omitempty,min=1"`
	Email       *string             `json:"email" validate:"omitempty,email"`
	PushToken   *string             `json:"push_token"`
	Preferences *PreferencesRequest `json:"preferences" validate:"omitempty"`
}

// PushTokenRequest is the body of PUT /api/v1/users/{user_id}/push-token.
// An empty token clears the stored one.
type PushTokenRequest struct {
	PushToken *string `json:"push_token" validate:"required"`
}

// CredentialsRequest is the body of POST /api/v1/users/validate and
// POST /api/v1/auth/login.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyTokenRequest is the body of POST /api/v1/auth/verify-token.
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// PreferencesResponse renders an account's notification settings.
type PreferencesResponse struct {
	EmailNotifications bool `json:"email_notifications"`
	PushNotifications  bool `json:"push_notifications"`
}

// AccountResponse renders an account. The password hash is never included.
type AccountResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	PushToken   string               `json:"push_token"`
	Preferences *PreferencesResponse `json:"preferences"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        AccountResponse `json:"user"`
}

// TokenClaimsResponse is the data of a successful token verification.
type TokenClaimsResponse struct {
	Sub       string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		PushToken: a.PushToken,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Preferences != nil {
		resp.Preferences = &PreferencesResponse{
			EmailNotifications: a.Preferences.EmailNotifications,
			PushNotifications:  a.Preferences.PushNotifications,
		}
	}
	return resp
}

func toAccountResponses(accounts []*domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

func toCreateInput(req CreateAccountRequest) service.CreateAccountInput {
	return service.CreateAccountInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PushToken:   req.PushToken,
		Preferences: *req.Preferences.flags(),
	}
}

func toAccountPatch(req UpdateAccountRequest) service.AccountPatch {
	return service.AccountPatch{
		Name:        req.Name,
		Email:       req.Email,
		PushToken:   req.PushToken,
		Preferences: req.Preferences.flags(),
	}
}

func toClaimsResponse(c *auth.Claims) TokenClaimsResponse {
	return TokenClaimsResponse{
		Sub:       c.Subject,
		Email:     c.Email,
		Name:      c.Name,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
	}
}
