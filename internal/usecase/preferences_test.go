package usecase

import (
	"context"
	"testing"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

func newTestPreferencesService(users *mockUserRepository, accounts *mockAccountRepository) *PreferencesService {
	return NewPreferencesService(users, accounts, nil)
}

func preferencesFixture(t *testing.T) (*mockUserRepository, *mockAccountRepository) {
	t.Helper()
	user := confirmedUser(t, strongTestPassword)
	account := &domain.Account{ID: user.AccountID, Username: "alice"}
	return &mockUserRepository{getByIDResult: user}, &mockAccountRepository{getByIDResult: account}
}

func TestPreferencesService_Update(t *testing.T) {
	users, accounts := preferencesFixture(t)
	service := newTestPreferencesService(users, accounts)

	locale := "de"
	profile, err := service.Update(context.Background(), "user-1", PreferencesInput{
		Locale:            &locale,
		FilteredLanguages: []string{"en", "", "  ", "fr"},
		HideOAuthLink:     ptrBool(true),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if users.updatePreferencesCalls != 1 {
		t.Fatalf("expected one preferences write, got %d", users.updatePreferencesCalls)
	}
	saved := users.updatePreferencesUser
	if saved.Locale == nil || *saved.Locale != "de" {
		t.Fatalf("expected locale de")
	}
	if len(saved.FilteredLanguages) != 2 || saved.FilteredLanguages[0] != "en" || saved.FilteredLanguages[1] != "fr" {
		t.Fatalf("expected blanks stripped in order, got %v", saved.FilteredLanguages)
	}
	if !saved.HideOAuthLink {
		t.Fatalf("expected hide flag set")
	}
	if accounts.updateSettingsCalls != 0 {
		t.Fatalf("expected no settings write without settings input")
	}
	if profile.User.Locale == nil || *profile.User.Locale != "de" {
		t.Fatalf("expected updated profile in the result")
	}
}

func TestPreferencesService_Update_ClearsLocale(t *testing.T) {
	users, accounts := preferencesFixture(t)
	users.getByIDResult.Locale = ptrString("de")
	service := newTestPreferencesService(users, accounts)

	empty := ""
	if _, err := service.Update(context.Background(), "user-1", PreferencesInput{Locale: &empty}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if users.updatePreferencesUser.Locale != nil {
		t.Fatalf("expected locale cleared")
	}
}

func TestPreferencesService_Update_InvalidLocale(t *testing.T) {
	users, accounts := preferencesFixture(t)
	service := newTestPreferencesService(users, accounts)

	locale := "xx-YY"
	if _, err := service.Update(context.Background(), "user-1", PreferencesInput{Locale: &locale}); err == nil {
		t.Fatalf("expected validation error for unknown locale")
	}
	if users.updatePreferencesCalls != 0 {
		t.Fatalf("expected no write on validation failure")
	}
}

func TestPreferencesService_Update_Settings(t *testing.T) {
	users, accounts := preferencesFixture(t)
	service := newTestPreferencesService(users, accounts)

	privacy := domain.PrivacyUnlisted
	if _, err := service.Update(context.Background(), "user-1", PreferencesInput{
		DefaultPrivacy: &privacy,
		BoostModal:     ptrBool(true),
		AutoPlayGif:    ptrBool(false),
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if accounts.updateSettingsCalls != 1 {
		t.Fatalf("expected one settings write, got %d", accounts.updateSettingsCalls)
	}
	settings := accounts.updateSettingsSettings
	if settings.DefaultPrivacy == nil || *settings.DefaultPrivacy != domain.PrivacyUnlisted {
		t.Fatalf("expected default privacy unlisted")
	}
	if settings.BoostModal == nil || !*settings.BoostModal {
		t.Fatalf("expected boost modal on")
	}
	if settings.AutoPlayGif == nil || *settings.AutoPlayGif {
		t.Fatalf("expected autoplay off")
	}
}

func TestPreferencesService_Update_InvalidPrivacy(t *testing.T) {
	users, accounts := preferencesFixture(t)
	service := newTestPreferencesService(users, accounts)

	privacy := "friends-only"
	if _, err := service.Update(context.Background(), "user-1", PreferencesInput{DefaultPrivacy: &privacy}); err == nil {
		t.Fatalf("expected validation error for unknown privacy level")
	}
	if users.updatePreferencesCalls != 0 || accounts.updateSettingsCalls != 0 {
		t.Fatalf("expected no writes on validation failure")
	}
}

func TestPreferencesService_Settings_Fallbacks(t *testing.T) {
	cases := []struct {
		name        string
		account     domain.Account
		wantPrivacy string
		wantBoost   bool
		wantGif     bool
	}{
		{
			name:        "open account defaults",
			account:     domain.Account{ID: "account-1"},
			wantPrivacy: domain.PrivacyPublic,
		},
		{
			name:        "locked account falls back to private",
			account:     domain.Account{ID: "account-1", Locked: true},
			wantPrivacy: domain.PrivacyPrivate,
		},
		{
			name: "explicit preference wins over lock",
			account: domain.Account{
				ID:     "account-1",
				Locked: true,
				Settings: domain.AccountSettings{
					DefaultPrivacy: ptrString(domain.PrivacyUnlisted),
					BoostModal:     ptrBool(true),
					AutoPlayGif:    ptrBool(true),
				},
			},
			wantPrivacy: domain.PrivacyUnlisted,
			wantBoost:   true,
			wantGif:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := confirmedUser(t, strongTestPassword)
			users := &mockUserRepository{getByIDResult: user}
			accounts := &mockAccountRepository{getByIDResult: &tc.account}
			service := newTestPreferencesService(users, accounts)

			settings, err := service.Settings(context.Background(), user.ID)
			if err != nil {
				t.Fatalf("Settings returned error: %v", err)
			}
			if settings.DefaultPrivacy != tc.wantPrivacy {
				t.Fatalf("expected privacy %s, got %s", tc.wantPrivacy, settings.DefaultPrivacy)
			}
			if settings.BoostModal != tc.wantBoost {
				t.Fatalf("expected boost modal %v", tc.wantBoost)
			}
			if settings.AutoPlayGif != tc.wantGif {
				t.Fatalf("expected autoplay %v", tc.wantGif)
			}
		})
	}
}
