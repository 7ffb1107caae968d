package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockAccountStore is a mock of store.AccountStore for use with testify/mock
type TestifyMockAccountStore struct {
	mock.Mock
}

var _ store.AccountStore = (*TestifyMockAccountStore)(nil)

// GetByID is a mock implementation of store.AccountStore.GetByID
func (m *TestifyMockAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*domain.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByEmail is a mock implementation of store.AccountStore.GetByEmail
func (m *TestifyMockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if account, ok := args.Get(0).(*domain.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

// List is a mock implementation of store.AccountStore.List
func (m *TestifyMockAccountStore) List(ctx context.Context, offset, limit int) ([]*domain.Account, int, error) {
	args := m.Called(ctx, offset, limit)
	if accounts, ok := args.Get(0).([]*domain.Account); ok {
		return accounts, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

// Save is a mock implementation of store.AccountStore.Save
func (m *TestifyMockAccountStore) Save(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// Delete is a mock implementation of store.AccountStore.Delete
func (m *TestifyMockAccountStore) Delete(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// WithTx is a mock implementation of store.AccountStore.WithTx
func (m *TestifyMockAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return m
}
