package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/phrazzld/accounts-api/internal/store"
)

const selectAccountColumns = `
	SELECT a.id, a.name, a.email, a.hashed_password, a.push_token, a.created_at, a.updated_at,
	       p.id, p.email_notifications, p.push_notifications, p.created_at, p.updated_at
	FROM accounts a
	LEFT JOIN account_preferences p ON p.account_id = a.id
`

// PostgresAccountStore implements the store.AccountStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db store.DBTX
	// beginner is nil when the store is bound to a caller's transaction.
	beginner     store.TxBeginner
	logger       *slog.Logger
	queryTimeout time.Duration
}

// AccountStoreOption configures a PostgresAccountStore.
type AccountStoreOption func(*PostgresAccountStore)

// WithQueryTimeout bounds every store call. Zero disables the bound.
func WithQueryTimeout(d time.Duration) AccountStoreOption {
	return func(s *PostgresAccountStore) {
		s.queryTimeout = d
	}
}

// NewPostgresAccountStore creates a new PostgreSQL implementation of the AccountStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAccountStore(db *sql.DB, logger *slog.Logger, opts ...AccountStoreOption) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &PostgresAccountStore{
		db:       db,
		beginner: db,
		logger:   logger.With(slog.String("component", "account_store")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure PostgresAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// WithTx implements store.AccountStore.WithTx
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return &PostgresAccountStore{
		db:           tx,
		logger:       s.logger,
		queryTimeout: s.queryTimeout,
	}
}

func (s *PostgresAccountStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// inTx runs fn in a new transaction, or directly on the bound transaction
// when the store was created by WithTx.
func (s *PostgresAccountStore) inTx(ctx context.Context, fn func(ctx context.Context, db store.DBTX) error) error {
	if s.beginner == nil {
		return fn(ctx, s.db)
	}
	return store.RunInTransaction(ctx, s.beginner, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// GetByID implements store.AccountStore.GetByID
func (s *PostgresAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := scanAccount(s.db.QueryRowContext(ctx, selectAccountColumns+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("account not found", slog.String("account_id", id.String()))
			return nil, store.ErrAccountNotFound
		}
		log.Error("failed to get account by ID",
			slog.String("error", err.Error()),
			slog.String("account_id", id.String()))
		return nil, MapError(err)
	}

	return account, nil
}

// GetByEmail implements store.AccountStore.GetByEmail
func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := scanAccount(s.db.QueryRowContext(ctx, selectAccountColumns+` WHERE a.email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		log.Error("failed to get account by email", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return account, nil
}

// List implements store.AccountStore.List
func (s *PostgresAccountStore) List(ctx context.Context, offset, limit int) ([]*domain.Account, int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		log.Error("failed to count accounts", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		selectAccountColumns+` ORDER BY a.created_at, a.id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		log.Error("failed to list accounts",
			slog.String("error", err.Error()),
			slog.Int("offset", offset),
			slog.Int("limit", limit))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	accounts := make([]*domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate accounts", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	return accounts, total, nil
}

// Save implements store.AccountStore.Save
// The account row and its preference row are upserted in one transaction.
func (s *PostgresAccountStore) Save(ctx context.Context, account *domain.Account) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if account.HashedPassword == "" {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	err := s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO accounts (id, name, email, hashed_password, push_token, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				hashed_password = EXCLUDED.hashed_password,
				push_token = EXCLUDED.push_token,
				updated_at = EXCLUDED.updated_at
		`,
			account.ID,
			account.Name,
			account.Email,
			account.HashedPassword,
			account.PushToken,
			account.CreatedAt,
			account.UpdatedAt,
		)
		if err != nil {
			return MapError(err)
		}

		pref := account.Preferences
		_, err = db.ExecContext(ctx, `
			INSERT INTO account_preferences
				(id, account_id, email_notifications, push_notifications, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (account_id) DO UPDATE SET
				email_notifications = EXCLUDED.email_notifications,
				push_notifications = EXCLUDED.push_notifications,
				updated_at = EXCLUDED.updated_at
		`,
			pref.ID,
			account.ID,
			pref.EmailNotifications,
			pref.PushNotifications,
			pref.CreatedAt,
			pref.UpdatedAt,
		)
		return MapError(err)
	})
	if err != nil {
		err = store.NewStoreError("account", "save", "write failed", err)
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("email already in use", slog.String("account_id", account.ID.String()))
		} else {
			log.Error("failed to save account",
				slog.String("error", err.Error()),
				slog.String("account_id", account.ID.String()))
		}
		return err
	}

	log.Debug("account saved", slog.String("account_id", account.ID.String()))
	return nil
}

// Delete implements store.AccountStore.Delete
// The preference row is removed first, then the account, in one transaction.
func (s *PostgresAccountStore) Delete(ctx context.Context, account *domain.Account) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		if _, err := db.ExecContext(ctx,
			`DELETE FROM account_preferences WHERE account_id = $1`, account.ID); err != nil {
			return MapError(err)
		}

		result, err := db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, account.ID)
		if err != nil {
			return MapError(err)
		}
		return CheckRowsAffected(result, store.ErrAccountNotFound)
	})
	if err != nil {
		err = store.NewStoreError("account", "delete", "delete failed", err)
		if !errors.Is(err, store.ErrAccountNotFound) {
			log.Error("failed to delete account",
				slog.String("error", err.Error()),
				slog.String("account_id", account.ID.String()))
		}
		return err
	}

	log.Info("account deleted", slog.String("account_id", account.ID.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account     domain.Account
		prefID      uuid.NullUUID
		prefEmail   sql.NullBool
		prefPush    sql.NullBool
		prefCreated sql.NullTime
		prefUpdated sql.NullTime
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.HashedPassword,
		&account.PushToken,
		&account.CreatedAt,
		&account.UpdatedAt,
		&prefID,
		&prefEmail,
		&prefPush,
		&prefCreated,
		&prefUpdated,
	)
	if err != nil {
		return nil, err
	}

	account.CreatedAt = account.CreatedAt.UTC()
	account.UpdatedAt = account.UpdatedAt.UTC()

	if prefID.Valid {
		account.Preferences = &domain.Preference{
			ID:                 prefID.UUID,
			EmailNotifications: prefEmail.Bool,
			PushNotifications:  prefPush.Bool,
			CreatedAt:          prefCreated.Time.UTC(),
			UpdatedAt:          prefUpdated.Time.UTC(),
		}
	}

	return &account, nil
}
