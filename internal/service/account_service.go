package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/phrazzld/accounts-api/internal/store"
)

// Paging defaults for ListAccounts.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// DeleteConfirmation is the message returned after a successful delete.
const DeleteConfirmation = "Account deleted successfully"

// AccountService manages the account lifecycle.
type AccountService interface {
	// CreateAccount registers a new account with its preference record.
	CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error)

	// GetAccount retrieves an account by ID.
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetAccountByEmail retrieves an account by exact email match.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// UpdateAccount applies the non-nil fields of patch. An empty push token
	// leaves the stored one unchanged.
	UpdateAccount(ctx context.Context, id uuid.UUID, patch AccountPatch) (*domain.Account, error)

	// UpdatePushToken overwrites the push token, including with "".
	UpdatePushToken(ctx context.Context, id uuid.UUID, token string) (*domain.Account, error)

	// ListAccounts returns one page of accounts in creation order.
	ListAccounts(ctx context.Context, page, limit int) (*AccountList, error)

	// DeleteAccount removes the account and its preference.
	DeleteAccount(ctx context.Context, id uuid.UUID) (*DeleteResult, error)

	// ValidateCredentials returns the account whose stored hash matches password.
	// Unknown emails and wrong passwords both fail with ErrInvalidCredentials.
	ValidateCredentials(ctx context.Context, email, password string) (*domain.Account, error)
}

// CreateAccountInput carries the fields of a registration.
type CreateAccountInput struct {
	Name        string
	Email       string
	Password    string
	PushToken   *string
	Preferences domain.PreferenceFlags
}

// AccountPatch describes a partial update. Nil fields are left untouched,
// and so is an empty PushToken; clearing a token goes through UpdatePushToken.
type AccountPatch struct {
	Name        *string
	Email       *string
	PushToken   *string
	Preferences *domain.PreferenceFlags
}

// Pagination describes the position of a page within the full account list.
type Pagination struct {
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// AccountList is one page of accounts.
type AccountList struct {
	Accounts   []*domain.Account
	Pagination Pagination
}

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Message string `json:"message"`
}

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accounts          store.AccountStore
	codec             auth.CredentialCodec
	db                *sql.DB
	passwordMinLength int
	logger            *slog.Logger
	now               func() time.Time

	// decoyHash is compared against when an email is unknown so that both
	// credential failures cost one hash verification.
	decoyHash func() string
}

// AccountServiceOption configures an AccountServiceImpl.
type AccountServiceOption func(*AccountServiceImpl)

// WithDB makes multi-step operations run inside one database transaction.
func WithDB(db *sql.DB) AccountServiceOption {
	return func(s *AccountServiceImpl) { s.db = db }
}

// WithPasswordMinLength overrides the minimum password length.
func WithPasswordMinLength(n int) AccountServiceOption {
	return func(s *AccountServiceImpl) { s.passwordMinLength = n }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountServiceImpl) { s.now = now }
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accounts store.AccountStore,
	codec auth.CredentialCodec,
	logger *slog.Logger,
	opts ...AccountServiceOption,
) *AccountServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	s := &AccountServiceImpl{
		accounts:          accounts,
		codec:             codec,
		passwordMinLength: domain.MinPasswordLength,
		logger:            logger.With("component", "account_service"),
		now:               func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.decoyHash = sync.OnceValue(func() string {
		hash, err := codec.Hash(context.Background(), uuid.NewString())
		if err != nil {
			return ""
		}
		return hash
	})

	return s
}

var _ AccountService = (*AccountServiceImpl)(nil)

// inTx runs fn against a store bound to a single transaction when a database
// is configured, and against the plain store otherwise.
func (s *AccountServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context, accounts store.AccountStore) error) error {
	if s.db == nil {
		return fn(ctx, s.accounts)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.accounts.WithTx(tx))
	})
}

// CreateAccount validates the input, rejects taken emails, hashes the
// password, and saves the account together with its preference.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	const op = "create_account"
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := domain.NewAccount(input.Name, input.Email, input.Password, input.PushToken, input.Preferences, s.now())
	if err != nil {
		log.Debug("account validation failed", "error", err)
		return nil, NewAccountServiceError(op, "invalid account", ErrValidation, err)
	}
	if err := domain.ValidatePassword(input.Password, s.passwordMinLength); err != nil {
		return nil, NewAccountServiceError(op, "invalid password", ErrValidation, err)
	}

	if err := s.ensureEmailFree(ctx, s.accounts, op, account.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := s.codec.Hash(ctx, input.Password)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, NewAccountServiceError(op, "hashing interrupted", ErrStorageUnavailable, err)
		}
		log.Error("failed to hash password", "error", err)
		return nil, NewAccountServiceError(op, "failed to hash password", nil, err)
	}
	account.HashedPassword = hash
	account.Password = ""

	if err := s.accounts.Save(ctx, account); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("email claimed concurrently", "account_id", account.ID)
		} else {
			log.Error("failed to save account", "error", err, "account_id", account.ID)
		}
		return nil, translateStoreError(op, err)
	}

	log.Info("account created", "account_id", account.ID)
	return account, nil
}

// GetAccount retrieves an account by its ID
func (s *AccountServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		s.logFailure(ctx, "failed to retrieve account", err, "account_id", id)
		return nil, translateStoreError("get_account", err)
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by its email address
func (s *AccountServiceImpl) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		s.logFailure(ctx, "failed to retrieve account by email", err)
		return nil, translateStoreError("get_account_by_email", err)
	}
	return account, nil
}

// UpdateAccount loads the account, applies the patch, and saves it back.
func (s *AccountServiceImpl) UpdateAccount(ctx context.Context, id uuid.UUID, patch AccountPatch) (*domain.Account, error) {
	const op = "update_account"

	if patch.Name != nil {
		if err := domain.ValidateName(*patch.Name); err != nil {
			return nil, NewAccountServiceError(op, "invalid name", ErrValidation, err)
		}
	}
	if patch.Email != nil {
		if err := domain.ValidateEmail(*patch.Email); err != nil {
			return nil, NewAccountServiceError(op, "invalid email", ErrValidation, err)
		}
	}

	var updated *domain.Account
	err := s.inTx(ctx, func(ctx context.Context, accounts store.AccountStore) error {
		account, err := accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if patch.Name != nil {
			account.Name = *patch.Name
		}
		if patch.Email != nil && *patch.Email != account.Email {
			if err := s.ensureEmailFree(ctx, accounts, op, *patch.Email, account.ID); err != nil {
				return err
			}
			account.Email = *patch.Email
		}
		if patch.PushToken != nil && *patch.PushToken != "" {
			account.PushToken = *patch.PushToken
		}
		if patch.Preferences != nil {
			if account.Preferences == nil {
				account.Preferences = domain.NewPreference(*patch.Preferences, now)
			} else {
				account.Preferences.Replace(*patch.Preferences, now)
			}
		}
		account.Touch(now)

		if err := accounts.Save(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "failed to update account", err, "account_id", id)
		return nil, translateStoreError(op, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("account updated", "account_id", id)
	return updated, nil
}

// UpdatePushToken overwrites the stored push token.
func (s *AccountServiceImpl) UpdatePushToken(ctx context.Context, id uuid.UUID, token string) (*domain.Account, error) {
	var updated *domain.Account
	err := s.inTx(ctx, func(ctx context.Context, accounts store.AccountStore) error {
		account, err := accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		account.PushToken = token
		account.Touch(s.now())
		if err := accounts.Save(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		s.logFailure(ctx, "failed to update push token", err, "account_id", id)
		return nil, translateStoreError("update_push_token", err)
	}
	return updated, nil
}

// ListAccounts returns the requested page. Non-positive page or limit fall
// back to the defaults and limit is capped at MaxLimit. A page whose offset
// would not fit in an int is past the end and comes back empty.
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, page, limit int) (*AccountList, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	offset := (page - 1) * limit
	if page-1 > math.MaxInt/limit {
		// Still queried so the page metadata carries the real total.
		offset = math.MaxInt - limit
	}

	accounts, total, err := s.accounts.List(ctx, offset, limit)
	if err != nil {
		s.logFailure(ctx, "failed to list accounts", err, "page", page, "limit", limit)
		return nil, translateStoreError("list_accounts", err)
	}

	return &AccountList{
		Accounts:   accounts,
		Pagination: NewPagination(total, page, limit),
	}, nil
}

// NewPagination computes paging metadata for a page of size limit.
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:       total,
		Limit:       limit,
		Page:        page,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// DeleteAccount removes the account and its preference.
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	err := s.inTx(ctx, func(ctx context.Context, accounts store.AccountStore) error {
		account, err := accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return accounts.Delete(ctx, account)
	})
	if err != nil {
		s.logFailure(ctx, "failed to delete account", err, "account_id", id)
		return nil, translateStoreError("delete_account", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("account deleted", "account_id", id)
	return &DeleteResult{Message: DeleteConfirmation}, nil
}

// ValidateCredentials checks an email and password pair.
func (s *AccountServiceImpl) ValidateCredentials(ctx context.Context, email, password string) (*domain.Account, error) {
	const op = "validate_credentials"
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to load account for credential check", "error", err)
			return nil, translateStoreError(op, err)
		}
		s.codec.Verify(password, s.decoyHash())
		log.Debug("credential check failed")
		return nil, NewAccountServiceError(op, "invalid credentials", ErrInvalidCredentials, nil)
	}

	if !s.codec.Verify(password, account.HashedPassword) {
		log.Debug("credential check failed", "account_id", account.ID)
		return nil, NewAccountServiceError(op, "invalid credentials", ErrInvalidCredentials, nil)
	}

	return account, nil
}

// ensureEmailFree fails with ErrDuplicateEmail if an account other than self uses email.
func (s *AccountServiceImpl) ensureEmailFree(
	ctx context.Context,
	accounts store.AccountStore,
	op, email string,
	self uuid.UUID,
) error {
	existing, err := accounts.GetByEmail(ctx, email)
	switch {
	case store.IsNotFoundError(err):
		return nil
	case err != nil:
		return translateStoreError(op, err)
	case existing.ID != self:
		return NewAccountServiceError(op, "email already registered", ErrDuplicateEmail, nil)
	default:
		return nil
	}
}

// logFailure logs expected outcomes at debug level and everything else as errors.
func (s *AccountServiceImpl) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateEmail) || errors.Is(err, store.ErrEmailExists) ||
		errors.Is(err, ErrValidation) {
		log.Debug(msg, append(attrs, "error", err)...)
		return
	}
	log.Error(msg, append(attrs, "error", err)...)
}
