package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the status of each downstream dependency.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// UserSummary describes the API view of a user.
type UserSummary struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Locale            *string    `json:"locale,omitempty"`
	FilteredLanguages []string   `json:"filtered_languages"`
	Confirmed         bool       `json:"confirmed"`
	Admin             bool       `json:"admin,omitempty"`
	TwoFactorEnabled  bool       `json:"two_factor_enabled"`
	HideOAuthLink     bool       `json:"hide_oauth_link,omitempty"`
	RemoteProfileURL  string     `json:"remote_profile_url,omitempty"`
	SignInCount       int        `json:"sign_in_count"`
	CurrentSignInAt   *time.Time `json:"current_sign_in_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func newUserSummary(user domain.User, remoteProfileURL string) UserSummary {
	languages := user.FilteredLanguages
	if languages == nil {
		languages = []string{}
	}
	return UserSummary{
		ID:                user.ID,
		Email:             user.Email,
		Locale:            user.Locale,
		FilteredLanguages: languages,
		Confirmed:         user.Confirmed(),
		Admin:             user.Admin,
		TwoFactorEnabled:  user.TwoFactorEnabled(),
		HideOAuthLink:     user.HideOAuthLink,
		RemoteProfileURL:  remoteProfileURL,
		SignInCount:       user.SignInCount,
		CurrentSignInAt:   user.CurrentSignInAt,
		CreatedAt:         user.CreatedAt,
	}
}

// AccountSummary describes the API view of the owning account.
type AccountSummary struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name,omitempty"`
	Locked      bool            `json:"locked"`
	Settings    SettingsPayload `json:"settings"`
}

// SettingsPayload is the effective preferences store with fallbacks applied.
type SettingsPayload struct {
	DefaultPrivacy string `json:"default_privacy"`
	BoostModal     bool   `json:"boost_modal"`
	AutoPlayGif    bool   `json:"auto_play_gif"`
}

func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Locked:      account.Locked,
		Settings: SettingsPayload{
			DefaultPrivacy: account.SettingDefaultPrivacy(),
			BoostModal:     account.SettingBoostModal(),
			AutoPlayGif:    account.SettingAutoPlayGif(),
		},
	}
}

// TokenPayload carries an issued access/refresh token pair.
type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Locale   *string `json:"locale"`
}

// RegistrationResponse contains registration results and next steps.
type RegistrationResponse struct {
	User                 UserSummary    `json:"user"`
	Account              AccountSummary `json:"account"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	Message              string         `json:"message,omitempty"`
	ExpiresAt            string         `json:"expires_at,omitempty"`
}

// ConfirmationRequest holds the emailed confirmation token.
type ConfirmationRequest struct {
	Token string `json:"token" binding:"required"`
}

// ConfirmationResponse is returned after a successful confirmation.
type ConfirmationResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	TokenPayload
	User UserSummary `json:"user"`
}

// AuthChallengeResponse is returned when the account requires a one-time password.
type AuthChallengeResponse struct {
	Message     string `json:"message"`
	ChallengeID string `json:"challenge_id"`
}

// AuthOTPRequest completes an OTP-gated login.
type AuthOTPRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// TokenRefreshRequest represents the payload to refresh an access token.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// PasswordResetRequest asks for a reset token by email.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetConfirmRequest redeems a reset token with a new password.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// PreferencesRequest carries a partial preferences update. Absent fields are
// left unchanged.
type PreferencesRequest struct {
	Locale            *string   `json:"locale"`
	FilteredLanguages *[]string `json:"filtered_languages"`
	HideOAuthLink     *bool     `json:"hide_oauth_link"`
	DefaultPrivacy    *string   `json:"default_privacy"`
	BoostModal        *bool     `json:"boost_modal"`
	AutoPlayGif       *bool     `json:"auto_play_gif"`
}

// ProfileResponse bundles the user with its owning account.
type ProfileResponse struct {
	User    UserSummary    `json:"user"`
	Account AccountSummary `json:"account"`
}

// TwoFactorSetupResponse carries the provisioned secret for authenticator apps.
type TwoFactorSetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// TwoFactorConfirmRequest verifies the first code from the authenticator app.
type TwoFactorConfirmRequest struct {
	Code string `json:"code" binding:"required"`
}

// TwoFactorConfirmResponse returns the plaintext backup codes exactly once.
type TwoFactorConfirmResponse struct {
	Message     string   `json:"message"`
	BackupCodes []string `json:"backup_codes"`
}

// OAuthCallbackRequest carries the identity asserted by the external provider.
type OAuthCallbackRequest struct {
	UID      string `json:"uid" binding:"required"`
	Nickname string `json:"nickname"`
}

// OAuthCallbackResponse describes the resolved local user.
type OAuthCallbackResponse struct {
	TokenPayload
	User    UserSummary `json:"user"`
	Created bool        `json:"created"`
}

// AdminUserListResponse is one page of the admin user listing.
type AdminUserListResponse struct {
	Users  []UserSummary `json:"users"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
