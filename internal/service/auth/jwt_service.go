package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the subject.
	// Returns the token and the instant it stops being valid.
	GenerateToken(ctx context.Context, subject TokenSubject) (string, time.Time, error)

	// ValidateToken checks the token's signature, algorithm and expiry and
	// returns its claims. Every failure matches ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// TokenSubject is the identity embedded in an access token.
type TokenSubject struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// Claims represents the verified contents of an access token.
type Claims struct {
	AccountID uuid.UUID `json:"-"`
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti"`
}
