package domain

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceFlags is the caller-supplied shape of a preference replacement.
type PreferenceFlags struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// DefaultPreferenceFlags returns the flags used when nothing is specified.
func DefaultPreferenceFlags() PreferenceFlags {
	return PreferenceFlags{Email: true, Push: true}
}

// Preference holds per-account notification settings.
// It is owned by exactly one Account and shares its lifecycle.
type Preference struct {
	ID                 uuid.UUID `json:"id"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewPreference creates a Preference from the given flags.
func NewPreference(flags PreferenceFlags, now time.Time) *Preference {
	return &Preference{
		ID:                 uuid.New(),
		EmailNotifications: flags.Email,
		PushNotifications:  flags.Push,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Replace overwrites both notification flags.
func (p *Preference) Replace(flags PreferenceFlags, now time.Time) {
	p.EmailNotifications = flags.Email
	p.PushNotifications = flags.Push
	p.UpdatedAt = now
}

// Flags returns the preference as PreferenceFlags.
func (p *Preference) Flags() PreferenceFlags {
	return PreferenceFlags{Email: p.EmailNotifications, Push: p.PushNotifications}
}
