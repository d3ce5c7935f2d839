package domain

import "time"

// Content visibility levels for newly composed posts.
const (
	PrivacyPublic   = "public"
	PrivacyUnlisted = "unlisted"
	PrivacyPrivate  = "private"
	PrivacyDirect   = "direct"
)

// AccountSettings is the nested preferences store persisted as JSONB.
// Nil fields mean "no explicit preference"; readers apply the fallbacks.
type AccountSettings struct {
	DefaultPrivacy *string `json:"default_privacy,omitempty"`
	BoostModal     *bool   `json:"boost_modal,omitempty"`
	AutoPlayGif    *bool   `json:"auto_play_gif,omitempty"`
}

// Account is the profile entity owned one-to-one by a User.
type Account struct {
	ID          string
	Username    string
	DisplayName string
	Locked      bool
	Settings    AccountSettings
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SettingDefaultPrivacy resolves the default content visibility. An explicit
// preference wins; without one, locked accounts default to private and open
// accounts to public.
func (a Account) SettingDefaultPrivacy() string {
	if a.Settings.DefaultPrivacy != nil && *a.Settings.DefaultPrivacy != "" {
		return *a.Settings.DefaultPrivacy
	}
	if a.Locked {
		return PrivacyPrivate
	}
	return PrivacyPublic
}

// SettingBoostModal reports whether boosting asks for confirmation first.
func (a Account) SettingBoostModal() bool {
	return a.Settings.BoostModal != nil && *a.Settings.BoostModal
}

// SettingAutoPlayGif reports whether animated GIFs play without interaction.
func (a Account) SettingAutoPlayGif() bool {
	return a.Settings.AutoPlayGif != nil && *a.Settings.AutoPlayGif
}
