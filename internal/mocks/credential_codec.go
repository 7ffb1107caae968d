package mocks

import (
	"context"

	"github.com/phrazzld/accounts-api/internal/service/auth"
)

// MockCredentialCodec implements auth.CredentialCodec for testing.
// Without overrides it "hashes" by prefixing and verifies by comparing.
type MockCredentialCodec struct {
	HashFn   func(ctx context.Context, plaintext string) (string, error)
	VerifyFn func(plaintext, hash string) bool
}

var _ auth.CredentialCodec = (*MockCredentialCodec)(nil)

// Hash implements auth.CredentialCodec
func (m *MockCredentialCodec) Hash(ctx context.Context, plaintext string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(ctx, plaintext)
	}
	return "hashed:" + plaintext, nil
}

// Verify implements auth.CredentialCodec
func (m *MockCredentialCodec) Verify(plaintext, hash string) bool {
	if m.VerifyFn != nil {
		return m.VerifyFn(plaintext, hash)
	}
	return hash == "hashed:"+plaintext
}
