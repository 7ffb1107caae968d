package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/domain"
)

// AccountStore defines the interface for account persistence.
// Accounts are always read and written together with their Preference.
type AccountStore interface {
	// GetByID retrieves an account and its preference by ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByEmail retrieves an account and its preference by exact email match.
	// Returns ErrAccountNotFound if no account uses the email.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// List returns up to limit accounts starting at offset, ordered by
	// creation time then ID, together with the total number of accounts.
	List(ctx context.Context, offset, limit int) ([]*domain.Account, int, error)

	// Save inserts the account or overwrites the stored row with the same ID,
	// writing its preference in the same unit of work.
	// Returns ErrEmailExists if another account already uses the email.
	Save(ctx context.Context, account *domain.Account) error

	// Delete removes the account and its preference.
	// Returns ErrAccountNotFound if the account does not exist.
	Delete(ctx context.Context, account *domain.Account) error

	// WithTx returns a store bound to the given transaction.
	// The caller owns the transaction and is responsible for committing it.
	WithTx(tx *sql.Tx) AccountStore
}
