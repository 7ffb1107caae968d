package auth

import (
	"context"
	"fmt"

	"github.com/phrazzld/accounts-api/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// CredentialCodec turns plaintext passwords into stored hashes and checks
// candidates against them.
type CredentialCodec interface {
	// Hash returns a salted one-way encoding of plaintext. Two calls with the
	// same input produce different outputs.
	Hash(ctx context.Context, plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. A malformed hash is a mismatch.
	Verify(plaintext, hash string) bool
}

// BcryptCodec implements CredentialCodec using bcrypt.
// At most maxConcurrent hashes run at once; further callers wait.
type BcryptCodec struct {
	cost int
	sem  *semaphore.Weighted
}

var _ CredentialCodec = (*BcryptCodec)(nil)

// NewBcryptCodec creates a BcryptCodec with the given cost and concurrency bound.
func NewBcryptCodec(cost, maxConcurrent int) (*BcryptCodec, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BcryptCodec{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}, nil
}

// NewBcryptCodecFromConfig creates a BcryptCodec from auth settings.
func NewBcryptCodecFromConfig(cfg config.AuthConfig) (*BcryptCodec, error) {
	return NewBcryptCodec(cfg.BcryptCost, cfg.MaxConcurrentHashes)
}

// Hash implements CredentialCodec.Hash. It fails with the context error if
// ctx ends while waiting for a hashing slot.
func (c *BcryptCodec) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting to hash password: %w", err)
	}
	defer c.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify implements CredentialCodec.Verify.
func (c *BcryptCodec) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
