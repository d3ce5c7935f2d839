package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// TwoFactorHandler drives the OTP enrollment lifecycle.
type TwoFactorHandler struct {
	twoFactor *usecase.TwoFactorService
}

func NewTwoFactorHandler(twoFactor *usecase.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor}
}

// RegisterRoutes binds two-factor endpoints. The group must be wrapped with
// RequireAuth.
func (h *TwoFactorHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/me/two-factor", h.Setup)
	r.POST("/me/two-factor/confirm", h.Confirm)
	r.DELETE("/me/two-factor", h.Disable)
}

// Setup godoc
// @Summary Begin two-factor enrollment
// @Description Provisions a TOTP secret. Sign-in is not gated until the secret is confirmed.
// @Tags TwoFactor
// @Produce json
// @Success 200 {object} TwoFactorSetupResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/me/two-factor [post]
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	provisioning, err := h.twoFactor.BeginSetup(c.Request.Context(), middleware.AuthenticatedUserID(c))
	if err != nil {
		if errors.Is(err, usecase.ErrTwoFactorAlreadyEnabled) {
			c.JSON(http.StatusConflict, NewErrorResponse(c, "two-factor authentication already enabled"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to start two-factor setup"))
		return
	}

	c.JSON(http.StatusOK, TwoFactorSetupResponse{
		Secret:     provisioning.Secret,
		OTPAuthURL: provisioning.URL,
	})
}

// Confirm godoc
// @Summary Confirm two-factor enrollment
// @Description Verifies the first authenticator code, enables OTP-gated sign-in, and returns the backup codes once.
// @Tags TwoFactor
// @Accept json
// @Produce json
// @Param request body TwoFactorConfirmRequest true "Confirmation code"
// @Success 200 {object} TwoFactorConfirmResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/me/two-factor/confirm [post]
func (h *TwoFactorHandler) Confirm(c *gin.Context) {
	var req TwoFactorConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid confirmation payload"))
		return
	}

	codes, err := h.twoFactor.ConfirmSetup(c.Request.Context(), middleware.AuthenticatedUserID(c), req.Code)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTwoFactorAlreadyEnabled, Status: http.StatusConflict, Message: "two-factor authentication already enabled"},
			{Err: usecase.ErrTwoFactorNotPending, Status: http.StatusBadRequest, Message: "two-factor setup has not been started"},
			{Err: usecase.ErrTwoFactorCodeInvalid, Status: http.StatusBadRequest, Message: "two-factor code is invalid"},
		}, http.StatusInternalServerError, "failed to confirm two-factor setup")
		return
	}

	c.JSON(http.StatusOK, TwoFactorConfirmResponse{
		Message:     "store these backup codes now; they are shown only once",
		BackupCodes: codes,
	})
}

// Disable godoc
// @Summary Disable two-factor authentication
// @Description Clears the OTP requirement, the secret, and any remaining backup codes.
// @Tags TwoFactor
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/me/two-factor [delete]
func (h *TwoFactorHandler) Disable(c *gin.Context) {
	if err := h.twoFactor.Disable(c.Request.Context(), middleware.AuthenticatedUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to disable two-factor authentication"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "two-factor authentication disabled"})
}
