package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTestAuthConfig returns auth settings suitable for tests.
// It uses the lowest bcrypt cost to keep hashing fast.
func DefaultTestAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
		BcryptCost:           bcrypt.MinCost,
		PasswordMinLength:    8,
		MaxConcurrentHashes:  4,
	}
}

// RequireTestJWTService creates a JWT service with DefaultTestAuthConfig.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultTestAuthConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return svc
}

// RequireTestCodec creates a low-cost BcryptCodec.
func RequireTestCodec(t *testing.T) *BcryptCodec {
	t.Helper()
	codec, err := NewBcryptCodecFromConfig(DefaultTestAuthConfig())
	require.NoError(t, err, "Failed to create test codec")
	return codec
}

// GenerateAuthHeaderForTestingT returns a Bearer Authorization header value
// signed with DefaultTestAuthConfig.
func GenerateAuthHeaderForTestingT(t *testing.T, id uuid.UUID, email string) string {
	t.Helper()
	token, _, err := RequireTestJWTService(t).GenerateToken(context.Background(), TokenSubject{
		ID:    id,
		Email: email,
		Name:  "Test Account",
	})
	require.NoError(t, err, "Failed to generate auth header")
	return "Bearer " + token
}
