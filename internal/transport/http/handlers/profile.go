package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/repository"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// ProfileHandler serves the authenticated user's profile and preferences.
type ProfileHandler struct {
	preferences *usecase.PreferencesService
	oauth       *usecase.OAuthService
}

func NewProfileHandler(preferences *usecase.PreferencesService, oauth *usecase.OAuthService) *ProfileHandler {
	return &ProfileHandler{preferences: preferences, oauth: oauth}
}

// RegisterRoutes binds profile endpoints. The group must be wrapped with
// RequireAuth.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Profile)
	r.PATCH("/me/preferences", h.UpdatePreferences)
	r.GET("/me/settings", h.Settings)
}

// Profile godoc
// @Summary Fetch the authenticated profile
// @Tags Profile
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/me [get]
func (h *ProfileHandler) Profile(c *gin.Context) {
	profile, err := h.preferences.Profile(c.Request.Context(), middleware.AuthenticatedUserID(c))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.profileResponse(profile))
}

// UpdatePreferences godoc
// @Summary Update preferences
// @Description Applies a partial update of locale, filtered languages, and account settings.
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body PreferencesRequest true "Preference changes"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/me/preferences [patch]
func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid preferences payload"))
		return
	}

	input := usecase.PreferencesInput{
		Locale:         req.Locale,
		HideOAuthLink:  req.HideOAuthLink,
		DefaultPrivacy: req.DefaultPrivacy,
		BoostModal:     req.BoostModal,
		AutoPlayGif:    req.AutoPlayGif,
	}
	if req.FilteredLanguages != nil {
		languages := *req.FilteredLanguages
		if languages == nil {
			languages = []string{}
		}
		input.FilteredLanguages = languages
	}

	profile, err := h.preferences.Update(c.Request.Context(), middleware.AuthenticatedUserID(c), input)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr.Error()))
			return
		}
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.profileResponse(profile))
}

// Settings godoc
// @Summary Fetch effective account settings
// @Description Returns the preferences with fallbacks applied, e.g. locked accounts default to private visibility.
// @Tags Profile
// @Produce json
// @Success 200 {object} SettingsPayload
// @Router /api/v1/me/settings [get]
func (h *ProfileHandler) Settings(c *gin.Context) {
	settings, err := h.preferences.Settings(c.Request.Context(), middleware.AuthenticatedUserID(c))
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingsPayload{
		DefaultPrivacy: settings.DefaultPrivacy,
		BoostModal:     settings.BoostModal,
		AutoPlayGif:    settings.AutoPlayGif,
	})
}

func (h *ProfileHandler) profileResponse(profile *usecase.Profile) ProfileResponse {
	remoteURL := ""
	if h.oauth != nil {
		remoteURL = h.oauth.RemoteProfileURL(profile.User)
	}
	return ProfileResponse{
		User:    newUserSummary(profile.User, remoteURL),
		Account: newAccountSummary(profile.Account),
	}
}

func respondProfileError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "profile not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load profile"))
}
