// Package memory provides an in-process implementation of store.AccountStore.
// It backs the memory database driver and the service tests.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/store"
)

// AccountStore keeps accounts in maps guarded by a single mutex.
// Stored values are deep copies, so callers never share memory with the store.
type AccountStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.Account
	byEmail map[string]uuid.UUID
	logger  *slog.Logger
}

// NewAccountStore creates an empty store. If logger is nil, a default logger will be used.
func NewAccountStore(logger *slog.Logger) *AccountStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountStore{
		byID:    make(map[uuid.UUID]*domain.Account),
		byEmail: make(map[string]uuid.UUID),
		logger:  logger.With(slog.String("component", "memory_account_store")),
	}
}

var _ store.AccountStore = (*AccountStore)(nil)

// WithTx returns the store itself. Every call is already atomic under the lock.
func (s *AccountStore) WithTx(*sql.Tx) store.AccountStore {
	return s
}

// GetByID implements store.AccountStore.GetByID
func (s *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return clone(account), nil
}

// GetByEmail implements store.AccountStore.GetByEmail
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return clone(s.byID[id]), nil
}

// List implements store.AccountStore.List
func (s *AccountStore) List(ctx context.Context, offset, limit int) ([]*domain.Account, int, error) {
	if err := checkContext(ctx); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Account, 0, len(s.byID))
	for _, account := range s.byID {
		all = append(all, account)
	}
	slices.SortFunc(all, func(a, b *domain.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []*domain.Account{}, total, nil
	}
	end := min(offset+limit, total)

	page := make([]*domain.Account, 0, end-offset)
	for _, account := range all[offset:end] {
		page = append(page, clone(account))
	}
	return page, total, nil
}

// Save implements store.AccountStore.Save
func (s *AccountStore) Save(ctx context.Context, account *domain.Account) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if account.HashedPassword == "" {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, taken := s.byEmail[account.Email]; taken && owner != account.ID {
		return store.ErrEmailExists
	}

	if previous, ok := s.byID[account.ID]; ok && previous.Email != account.Email {
		delete(s.byEmail, previous.Email)
	}

	stored := clone(account)
	stored.Password = ""
	s.byID[account.ID] = stored
	s.byEmail[account.Email] = account.ID

	logger.FromContextOrDefault(ctx, s.logger).Debug("account saved",
		slog.String("account_id", account.ID.String()))
	return nil
}

// Delete implements store.AccountStore.Delete
func (s *AccountStore) Delete(ctx context.Context, account *domain.Account) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[account.ID]
	if !ok {
		return store.ErrAccountNotFound
	}
	delete(s.byEmail, stored.Email)
	delete(s.byID, account.ID)

	logger.FromContextOrDefault(ctx, s.logger).Info("account deleted",
		slog.String("account_id", account.ID.String()))
	return nil
}

// Len reports the number of stored accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return nil
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	if a.Preferences != nil {
		p := *a.Preferences
		c.Preferences = &p
	}
	return &c
}
