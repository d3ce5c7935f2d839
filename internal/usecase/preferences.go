package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// Profile bundles the user row with its owning account.
type Profile struct {
	User    domain.User
	Account domain.Account
}

// EffectiveSettings is the preferences store with fallbacks applied.
type EffectiveSettings struct {
	DefaultPrivacy string
	BoostModal     bool
	AutoPlayGif    bool
}

// PreferencesInput carries a partial preferences update. Nil fields are left
// unchanged.
type PreferencesInput struct {
	Locale            *string
	FilteredLanguages []string
	HideOAuthLink     *bool
	DefaultPrivacy    *string
	BoostModal        *bool
	AutoPlayGif       *bool
}

// PreferencesService reads and updates user and account preferences.
type PreferencesService struct {
	users    port.UserRepository
	accounts port.AccountRepository
	log      *zap.Logger
	now      func() time.Time
}

// NewPreferencesService constructs a preferences service.
func NewPreferencesService(users port.UserRepository, accounts port.AccountRepository, log *zap.Logger) *PreferencesService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PreferencesService{
		users:    users,
		accounts: accounts,
		log:      log,
		now:      time.Now,
	}
}

// Profile loads the user together with its account.
func (s *PreferencesService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	account, err := s.accounts.GetByID(ctx, user.AccountID)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	return &Profile{User: *user, Account: *account}, nil
}

// Settings resolves the account preferences with their fallbacks: an
// explicit default-privacy preference wins, locked accounts fall back to
// private, open ones to public.
func (s *PreferencesService) Settings(ctx context.Context, userID string) (*EffectiveSettings, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &EffectiveSettings{
		DefaultPrivacy: profile.Account.SettingDefaultPrivacy(),
		BoostModal:     profile.Account.SettingBoostModal(),
		AutoPlayGif:    profile.Account.SettingAutoPlayGif(),
	}, nil
}

// Update validates and persists the supplied preference changes. Validation
// failures block the write entirely; no partial state is stored.
func (s *PreferencesService) Update(ctx context.Context, userID string, input PreferencesInput) (*Profile, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user := profile.User
	account := profile.Account

	if input.Locale != nil {
		if err := domain.ValidateLocale(input.Locale); err != nil {
			return nil, err
		}
		if *input.Locale == "" {
			user.Locale = nil
		} else {
			user.Locale = input.Locale
		}
	}
	if input.FilteredLanguages != nil {
		user.FilteredLanguages = domain.SanitizeFilteredLanguages(input.FilteredLanguages)
	}
	if input.HideOAuthLink != nil {
		user.HideOAuthLink = *input.HideOAuthLink
	}

	settingsChanged := false
	if input.DefaultPrivacy != nil {
		if err := domain.ValidateDefaultPrivacy(*input.DefaultPrivacy); err != nil {
			return nil, err
		}
		if *input.DefaultPrivacy == "" {
			account.Settings.DefaultPrivacy = nil
		} else {
			account.Settings.DefaultPrivacy = input.DefaultPrivacy
		}
		settingsChanged = true
	}
	if input.BoostModal != nil {
		account.Settings.BoostModal = input.BoostModal
		settingsChanged = true
	}
	if input.AutoPlayGif != nil {
		account.Settings.AutoPlayGif = input.AutoPlayGif
		settingsChanged = true
	}

	if err := s.users.UpdatePreferences(ctx, user); err != nil {
		return nil, fmt.Errorf("update user preferences: %w", err)
	}

	if settingsChanged {
		if err := s.accounts.UpdateSettings(ctx, account.ID, account.Settings); err != nil {
			return nil, fmt.Errorf("update account settings: %w", err)
		}
	}

	return &Profile{User: user, Account: account}, nil
}
