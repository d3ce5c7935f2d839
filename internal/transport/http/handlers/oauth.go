package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// OAuthHandler resolves external identities to local users.
type OAuthHandler struct {
	oauth *usecase.OAuthService
	auth  *usecase.AuthService
}

func NewOAuthHandler(oauth *usecase.OAuthService, auth *usecase.AuthService) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, auth: auth}
}

// RegisterRoutes binds OAuth endpoints.
func (h *OAuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/oauth/:provider/callback", h.Callback)
}

// Callback godoc
// @Summary Resolve an external identity
// @Description Finds the user linked to the asserted (provider, uid) pair, creating one on first sign-in, and issues a token pair.
// @Tags OAuth
// @Accept json
// @Produce json
// @Param provider path string true "Identity provider"
// @Param request body OAuthCallbackRequest true "Asserted identity"
// @Success 200 {object} OAuthCallbackResponse
// @Success 201 {object} OAuthCallbackResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/oauth/{provider}/callback [post]
func (h *OAuthHandler) Callback(c *gin.Context) {
	var req OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid oauth payload"))
		return
	}

	provider := c.Param("provider")
	user, created, err := h.oauth.FindOrCreate(c.Request.Context(), provider, req.UID, req.Nickname)
	if err != nil {
		if errors.Is(err, usecase.ErrOAuthIdentityInvalid) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "provider and uid are required"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to resolve oauth identity"))
		return
	}

	pair, err := h.auth.SignInWithOAuth(c.Request.Context(), user, clientIP(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to complete oauth sign-in"))
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, OAuthCallbackResponse{
		TokenPayload: newTokenPayload(pair),
		User:         newUserSummary(*user, h.oauth.RemoteProfileURL(*user)),
		Created:      created,
	})
}
