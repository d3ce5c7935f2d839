package domain

import "time"

// UserRegisteredEvent represents the payload for account.user.registered messages.
type UserRegisteredEvent struct {
	EventID            string
	UserID             string
	AccountID          string
	Username           string
	Email              string
	Locale             *string
	RegisteredAt       time.Time
	RegistrationMethod string
	Metadata           map[string]any
}

// UserConfirmedEvent represents the payload for account.user.confirmed messages.
type UserConfirmedEvent struct {
	EventID     string
	UserID      string
	ConfirmedAt time.Time
	Method      string
	Metadata    map[string]any
}

// UserSignedInEvent represents the payload for account.user.signed_in messages.
type UserSignedInEvent struct {
	EventID     string
	UserID      string
	SignInCount int
	IPAddress   *string
	Method      string
	SignedInAt  time.Time
	Metadata    map[string]any
}

// OAuthLinkedEvent represents the payload for account.oauth.linked messages.
type OAuthLinkedEvent struct {
	EventID  string
	UserID   string
	Provider string
	UID      string
	NewUser  bool
	LinkedAt time.Time
	Metadata map[string]any
}

// TwoFactorEnabledEvent represents the payload for account.two_factor.enabled messages.
type TwoFactorEnabledEvent struct {
	EventID     string
	UserID      string
	BackupCodes int
	EnabledAt   time.Time
	Metadata    map[string]any
}

// TwoFactorDisabledEvent represents the payload for account.two_factor.disabled messages.
type TwoFactorDisabledEvent struct {
	EventID    string
	UserID     string
	DisabledAt time.Time
	Metadata   map[string]any
}
