package domain

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestUserConfirmed(t *testing.T) {
	user := User{}
	if user.Confirmed() {
		t.Fatalf("expected unconfirmed user without timestamp")
	}

	now := time.Now().UTC()
	if !user.Confirm(now) {
		t.Fatalf("expected Confirm to report a transition")
	}
	if !user.Confirmed() {
		t.Fatalf("expected confirmed user after timestamp is set")
	}
	if user.ConfirmedAt == nil || !user.ConfirmedAt.Equal(now) {
		t.Fatalf("expected confirmation timestamp %v, got %v", now, user.ConfirmedAt)
	}

	if user.Confirm(now.Add(time.Hour)) {
		t.Fatalf("expected repeated Confirm to be a no-op")
	}
	if !user.ConfirmedAt.Equal(now) {
		t.Fatalf("expected original confirmation timestamp to be kept")
	}
}

func TestUserDisableTwoFactor(t *testing.T) {
	user := User{
		OTPRequiredForLogin: true,
		OTPSecret:           strPtr("JBSWY3DPEHPK3PXP"),
		OTPBackupCodes:      []string{"digest-1", "digest-2", "digest-3"},
	}

	user.DisableTwoFactor()

	if user.OTPRequiredForLogin {
		t.Fatalf("expected OTP requirement to be cleared")
	}
	if user.OTPSecret != nil {
		t.Fatalf("expected secret to be cleared, got %q", *user.OTPSecret)
	}
	if len(user.OTPBackupCodes) != 0 {
		t.Fatalf("expected backup codes to be emptied, got %v", user.OTPBackupCodes)
	}
}

func TestUserEnableTwoFactor(t *testing.T) {
	user := User{}
	user.EnableTwoFactor("JBSWY3DPEHPK3PXP", []string{"d1", "d2"})

	if !user.TwoFactorEnabled() {
		t.Fatalf("expected OTP requirement to be set")
	}
	if user.OTPSecret == nil || *user.OTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("expected secret to be stored")
	}
	if len(user.OTPBackupCodes) != 2 {
		t.Fatalf("expected 2 backup code digests, got %d", len(user.OTPBackupCodes))
	}
}

func TestUserRegisterSignInShiftsTrackableColumns(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	user := User{}
	user.RegisterSignIn(first, strPtr("198.51.100.7"))

	if user.SignInCount != 1 {
		t.Fatalf("expected sign-in count 1, got %d", user.SignInCount)
	}
	if user.CurrentSignInAt == nil || !user.CurrentSignInAt.Equal(first) {
		t.Fatalf("expected current sign-in at %v", first)
	}
	if user.LastSignInAt != nil {
		t.Fatalf("expected no previous sign-in on first login")
	}

	user.RegisterSignIn(second, strPtr("203.0.113.4"))

	if user.SignInCount != 2 {
		t.Fatalf("expected sign-in count 2, got %d", user.SignInCount)
	}
	if user.CurrentSignInAt == nil || !user.CurrentSignInAt.Equal(second) {
		t.Fatalf("expected current sign-in at %v", second)
	}
	if user.LastSignInAt == nil || !user.LastSignInAt.Equal(first) {
		t.Fatalf("expected last sign-in shifted to %v", first)
	}
	if user.CurrentSignInIP == nil || *user.CurrentSignInIP != "203.0.113.4" {
		t.Fatalf("expected current IP 203.0.113.4, got %v", user.CurrentSignInIP)
	}
	if user.LastSignInIP == nil || *user.LastSignInIP != "198.51.100.7" {
		t.Fatalf("expected last IP 198.51.100.7, got %v", user.LastSignInIP)
	}
}

func TestUserRemoteProfileURL(t *testing.T) {
	base := "https://www.nicovideo.jp/user"

	linked := User{Provider: strPtr("nico"), UID: strPtr("12345678")}
	if got := linked.RemoteProfileURL(base); got != "https://www.nicovideo.jp/user/12345678" {
		t.Fatalf("unexpected profile URL %q", got)
	}
	if got := linked.RemoteProfileURL(base + "/"); got != "https://www.nicovideo.jp/user/12345678" {
		t.Fatalf("expected trailing slash to be normalized, got %q", got)
	}

	hidden := User{Provider: strPtr("nico"), UID: strPtr("12345678"), HideOAuthLink: true}
	if got := hidden.RemoteProfileURL(base); got != "" {
		t.Fatalf("expected empty URL for hidden linkage, got %q", got)
	}

	unlinked := User{}
	if got := unlinked.RemoteProfileURL(base); got != "" {
		t.Fatalf("expected empty URL without external id, got %q", got)
	}

	emptyUID := User{Provider: strPtr("nico"), UID: strPtr("")}
	if got := emptyUID.RemoteProfileURL(base); got != "" {
		t.Fatalf("expected empty URL for blank external id, got %q", got)
	}
}

func TestAccountSettingDefaultPrivacy(t *testing.T) {
	open := Account{}
	if got := open.SettingDefaultPrivacy(); got != PrivacyPublic {
		t.Fatalf("expected public fallback for open account, got %q", got)
	}

	locked := Account{Locked: true}
	if got := locked.SettingDefaultPrivacy(); got != PrivacyPrivate {
		t.Fatalf("expected private fallback for locked account, got %q", got)
	}

	explicit := Account{Locked: true, Settings: AccountSettings{DefaultPrivacy: strPtr(PrivacyUnlisted)}}
	if got := explicit.SettingDefaultPrivacy(); got != PrivacyUnlisted {
		t.Fatalf("expected explicit preference to win, got %q", got)
	}
}

func TestAccountSettingFlags(t *testing.T) {
	account := Account{}
	if account.SettingBoostModal() {
		t.Fatalf("expected boost modal to default to false")
	}
	if account.SettingAutoPlayGif() {
		t.Fatalf("expected autoplay gif to default to false")
	}

	on := true
	account.Settings.BoostModal = &on
	account.Settings.AutoPlayGif = &on
	if !account.SettingBoostModal() || !account.SettingAutoPlayGif() {
		t.Fatalf("expected explicit preferences to be honored")
	}
}
