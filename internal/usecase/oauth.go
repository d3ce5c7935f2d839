package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const oauthPasswordBytes = 24

// ErrOAuthIdentityInvalid indicates the external identity is missing its
// provider or external id.
var ErrOAuthIdentityInvalid = errors.New("oauth identity requires provider and uid")

// OAuthConfig carries the provider constants the service builds with.
type OAuthConfig struct {
	// ProfileBaseURL prefixes the external id in remote profile links.
	ProfileBaseURL string
	// PlaceholderDomain hosts the synthesized address for users created
	// without an email of their own.
	PlaceholderDomain string
}

// OAuthService links users to an external identity provider.
type OAuthService struct {
	tx     port.TxRunner
	users  port.UserRepository
	events port.EventPublisher
	cfg    OAuthConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewOAuthService constructs an OAuth linking service.
func NewOAuthService(tx port.TxRunner, users port.UserRepository, events port.EventPublisher, cfg OAuthConfig, log *zap.Logger) *OAuthService {
	if cfg.PlaceholderDomain == "" {
		cfg.PlaceholderDomain = "oauth.social.example"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OAuthService{
		tx:     tx,
		users:  users,
		events: events,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// FindOrCreate resolves the external identity to a user, creating one on
// first sign-in. New users get a random password, a placeholder email
// synthesized from the identity, an account named after the nickname, and an
// immediate confirmation. The unique index on (provider, uid) decides races:
// the loser re-fetches and returns the winner.
func (s *OAuthService) FindOrCreate(ctx context.Context, provider, uid, nickname string) (*domain.User, bool, error) {
	provider = strings.TrimSpace(provider)
	uid = strings.TrimSpace(uid)
	if provider == "" || uid == "" {
		return nil, false, ErrOAuthIdentityInvalid
	}

	existing, err := s.users.GetByOAuth(ctx, provider, uid)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup oauth identity: %w", err)
	}

	password, err := security.GenerateSecureToken(oauthPasswordBytes)
	if err != nil {
		return nil, false, fmt.Errorf("generate password: %w", err)
	}
	encrypted, err := security.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(nickname)
	if username == "" {
		username = fmt.Sprintf("%s_%s", provider, uid)
	}

	now := s.now().UTC()
	confirmedAt := now
	providerCopy := provider
	uidCopy := uid

	account := domain.Account{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:                uuid.NewString(),
		AccountID:         account.ID,
		Email:             fmt.Sprintf("%s-%s@%s", uid, provider, s.cfg.PlaceholderDomain),
		EncryptedPassword: encrypted,
		FilteredLanguages: []string{},
		ConfirmedAt:       &confirmedAt,
		OTPBackupCodes:    []string{},
		Provider:          &providerCopy,
		UID:               &uidCopy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.tx.WithinTx(ctx, func(users port.UserRepository, accounts port.AccountRepository) error {
		if err := accounts.Create(ctx, account); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			winner, refetchErr := s.users.GetByOAuth(ctx, provider, uid)
			if refetchErr != nil {
				return nil, false, fmt.Errorf("refetch after conflict: %w", refetchErr)
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	if err := s.events.PublishOAuthLinked(ctx, domain.OAuthLinkedEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Provider: provider,
		UID:      uid,
		NewUser:  true,
		LinkedAt: now,
	}); err != nil {
		s.log.Warn("publish oauth linked event", zap.Error(err))
	}

	return &user, true, nil
}

// RemoteProfileURL builds the external profile link for the user's linked
// identity. Empty when the user hides the linkage or no identity is present.
func (s *OAuthService) RemoteProfileURL(user domain.User) string {
	return user.RemoteProfileURL(s.cfg.ProfileBaseURL)
}
