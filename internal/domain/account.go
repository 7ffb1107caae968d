package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's input limit; longer
// passwords are rejected rather than silently truncated.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// Account validation errors
var (
	ErrEmptyAccountID      = errors.New("account ID cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = fmt.Errorf("%w: too short", ErrInvalidPassword)
	ErrPasswordTooLong     = fmt.Errorf("%w: must be at most 72 bytes long", ErrInvalidPassword)
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrMissingPreferences  = errors.New("account must own a preference record")
)

var validate = validator.New()

// Account is the identity record of a registered user.
// HashedPassword is the credential codec output and is never rendered.
type Account struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Password       string      `json:"-"` // plaintext, only held until hashed
	HashedPassword string      `json:"-"`
	PushToken      string      `json:"push_token"`
	Preferences    *Preference `json:"preferences"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewAccount creates an Account together with its owned Preference.
// The push token defaults to the empty string when nil. The returned account
// carries the plaintext password; the caller must hash it before storage.
// Both records are stamped with now.
func NewAccount(name, email, password string, pushToken *string, flags PreferenceFlags, now time.Time) (*Account, error) {
	account := &Account{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		Password:    password,
		Preferences: NewPreference(flags, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if pushToken != nil {
		account.PushToken = *pushToken
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
// A plaintext password, when present, must satisfy the default length policy;
// otherwise the account must already carry a hash.
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyAccountID)
	}

	if err := ValidateName(a.Name); err != nil {
		return err
	}

	if err := ValidateEmail(a.Email); err != nil {
		return err
	}

	if a.Password != "" {
		if err := ValidatePassword(a.Password, MinPasswordLength); err != nil {
			return err
		}
	} else if a.HashedPassword == "" {
		return NewValidationError("password", "is required", ErrEmptyHashedPassword)
	}

	if a.Preferences == nil {
		return NewValidationError("preferences", "are required", ErrMissingPreferences)
	}

	return nil
}

// Touch sets UpdatedAt to the given time.
func (a *Account) Touch(now time.Time) {
	a.UpdatedAt = now
}

// ValidateName checks that a display name is present.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyName)
	}
	return nil
}

// ValidateEmail checks that an email address is present and well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "cannot be empty", ErrEmptyEmail)
	}
	if err := validate.Var(email, "email"); err != nil {
		return NewValidationError("email", "has invalid format", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword checks a plaintext password against the length policy.
// minLength is counted in characters, the upper bound in bytes.
func ValidatePassword(password string, minLength int) error {
	if minLength <= 0 {
		minLength = MinPasswordLength
	}
	if utf8.RuneCountInString(password) < minLength {
		return NewValidationError("password", "is too short", ErrPasswordTooShort)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "is too long", ErrPasswordTooLong)
	}
	return nil
}
