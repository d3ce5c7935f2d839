package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// UserScope names a reusable read filter compiled by the repository.
type UserScope string

const (
	// ScopeRecent orders users most-recently-created first.
	ScopeRecent UserScope = "recent"
	// ScopeAdmins keeps users with the admin flag set.
	ScopeAdmins UserScope = "admins"
	// ScopeConfirmed keeps users with a confirmation timestamp.
	ScopeConfirmed UserScope = "confirmed"
	// ScopeInactive keeps users whose active sign-in is older than the
	// inactivity threshold. Users who never signed in are not matched.
	ScopeInactive UserScope = "inactive"
)

// UserFilter narrows List and Count queries. Scopes compose with AND.
type UserFilter struct {
	Scopes      []UserScope
	EmailPrefix string
	SignInIP    string
	Limit       int
	Offset      int
}

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByOAuth(ctx context.Context, provider, uid string) (*domain.User, error)
	Confirm(ctx context.Context, id string, confirmedAt time.Time) error
	UpdatePassword(ctx context.Context, id string, encryptedPassword string, changedAt time.Time) error
	// UpdateSignIn persists the trackable columns (count, current/last
	// timestamps and IPs) of an already shifted user.
	UpdateSignIn(ctx context.Context, user domain.User) error
	// UpdateTwoFactor persists the OTP columns (requirement flag, secret,
	// backup code digests).
	UpdateTwoFactor(ctx context.Context, user domain.User) error
	UpdateBackupCodes(ctx context.Context, id string, digests []string) error
	// UpdatePreferences persists locale, filtered languages, and the
	// hide-OAuth-link flag.
	UpdatePreferences(ctx context.Context, user domain.User) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
}
