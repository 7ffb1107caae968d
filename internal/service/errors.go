package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/accounts-api/internal/domain"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/phrazzld/accounts-api/internal/store"
)

// Service errors. Callers match them with errors.Is; the API layer maps each
// one to an HTTP status.
var (
	// ErrValidation indicates malformed input. The chain carries a
	// *domain.ValidationError naming the offending field.
	ErrValidation = domain.ErrValidation

	// ErrDuplicateEmail indicates another account already uses the email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound indicates the requested account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken indicates a token failed verification for any reason.
	ErrInvalidToken = auth.ErrInvalidToken

	// ErrStorageUnavailable indicates the account store could not serve the call.
	ErrStorageUnavailable = errors.New("account storage unavailable")
)

// AccountServiceError is a custom error type for account service errors.
// Kind is one of the sentinel errors above, Err the underlying cause.
type AccountServiceError struct {
	Operation string
	Message   string
	Kind      error
	Err       error
}

// Error implements the error interface for AccountServiceError.
func (e *AccountServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *AccountServiceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewAccountServiceError creates a new AccountServiceError.
func NewAccountServiceError(operation, message string, kind, err error) *AccountServiceError {
	return &AccountServiceError{
		Operation: operation,
		Message:   message,
		Kind:      kind,
		Err:       err,
	}
}

// translateStoreError converts a store failure into a service error.
// Errors that are already service errors pass through unchanged.
func translateStoreError(operation string, err error) error {
	var serviceErr *AccountServiceError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &serviceErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return NewAccountServiceError(operation, "account not found", ErrNotFound, err)
	case errors.Is(err, store.ErrEmailExists):
		return NewAccountServiceError(operation, "email already registered", ErrDuplicateEmail, err)
	case errors.Is(err, store.ErrStorageUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return NewAccountServiceError(operation, "storage unavailable", ErrStorageUnavailable, err)
	case errors.Is(err, domain.ErrValidation):
		return NewAccountServiceError(operation, "invalid account", ErrValidation, err)
	default:
		return NewAccountServiceError(operation, "unexpected failure", nil, err)
	}
}
