package domain

import (
	"strings"
	"time"
)

// InactivityThreshold is how long a user may go without an active sign-in
// before the inactive listing filter picks them up.
const InactivityThreshold = 14 * 24 * time.Hour

// User mirrors the persisted representation in the users table.
type User struct {
	ID                  string
	AccountID           string
	Email               string
	EncryptedPassword   string
	Admin               bool
	Locale              *string
	FilteredLanguages   []string
	ConfirmedAt         *time.Time
	ConfirmationSentAt  *time.Time
	OTPRequiredForLogin bool
	OTPSecret           *string
	OTPBackupCodes      []string
	Provider            *string
	UID                 *string
	HideOAuthLink       bool
	SignInCount         int
	CurrentSignInAt     *time.Time
	LastSignInAt        *time.Time
	CurrentSignInIP     *string
	LastSignInIP        *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Confirmed reports whether the confirmation timestamp has been set.
func (u User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// Confirm stamps the confirmation timestamp.
// Returns true if the user transitioned from unconfirmed to confirmed.
func (u *User) Confirm(at time.Time) bool {
	if u.ConfirmedAt != nil {
		return false
	}
	timeCopy := at
	u.ConfirmedAt = &timeCopy
	return true
}

// TwoFactorEnabled reports whether sign-in requires a one-time password.
func (u User) TwoFactorEnabled() bool {
	return u.OTPRequiredForLogin
}

// EnableTwoFactor stores the shared secret and backup code digests and
// switches the account to OTP-gated sign-in.
func (u *User) EnableTwoFactor(secret string, backupCodeDigests []string) {
	secretCopy := secret
	u.OTPSecret = &secretCopy
	u.OTPBackupCodes = backupCodeDigests
	u.OTPRequiredForLogin = true
}

// DisableTwoFactor clears the OTP requirement along with the stored secret
// and any remaining backup codes. The caller persists the result; a failed
// save leaves the stored row untouched.
func (u *User) DisableTwoFactor() {
	u.OTPRequiredForLogin = false
	u.OTPSecret = nil
	u.OTPBackupCodes = []string{}
}

// OAuthLinked reports whether an external identity is attached.
func (u User) OAuthLinked() bool {
	return u.Provider != nil && u.UID != nil && *u.UID != ""
}

// RemoteProfileURL builds the external profile URL for the linked identity.
// Returns an empty string when the user hides the linkage or no external id
// is present.
func (u User) RemoteProfileURL(baseURL string) string {
	if u.HideOAuthLink || !u.OAuthLinked() {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + *u.UID
}

// RegisterSignIn advances the trackable sign-in columns: the previous
// current timestamp/IP shift into the last slots and the counter increments.
func (u *User) RegisterSignIn(at time.Time, ip *string) {
	u.LastSignInAt = u.CurrentSignInAt
	u.LastSignInIP = u.CurrentSignInIP
	timeCopy := at
	u.CurrentSignInAt = &timeCopy
	if ip != nil {
		ipCopy := *ip
		u.CurrentSignInIP = &ipCopy
	} else {
		u.CurrentSignInIP = nil
	}
	u.SignInCount++
}
