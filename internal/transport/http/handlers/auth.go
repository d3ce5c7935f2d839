package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

const tokenTypeBearer = "Bearer"

// AuthHandler exposes login, OTP completion, and token refresh endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
	r.POST("/login/otp", h.CompleteOTP)
	r.POST("/token/refresh", h.Refresh)
}

func newTokenPayload(pair *usecase.TokenPair) TokenPayload {
	return TokenPayload{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(time.Until(pair.AccessExpiresAt).Seconds()),
	}
}

// Login godoc
// @Summary Authenticate with email and password
// @Description Issues a token pair, or a one-time-password challenge for accounts with two-factor enabled.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AuthLoginRequest true "Login request"
// @Success 200 {object} AuthLoginResponse
// @Success 202 {object} AuthChallengeResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	ip := clientIP(c)
	outcome, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password, ip)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if outcome.TwoFactorRequired() {
		c.JSON(http.StatusAccepted, AuthChallengeResponse{
			Message:     "one-time password required",
			ChallengeID: outcome.ChallengeID,
		})
		return
	}

	c.JSON(http.StatusOK, loginResponse(outcome))
}

// CompleteOTP godoc
// @Summary Complete an OTP-gated login
// @Description Finishes a pending login challenge with a TOTP or backup code.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AuthOTPRequest true "OTP completion request"
// @Success 200 {object} AuthLoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/login/otp [post]
func (h *AuthHandler) CompleteOTP(c *gin.Context) {
	var req AuthOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid otp payload"))
		return
	}

	outcome, err := h.auth.CompleteTwoFactor(c.Request.Context(), req.ChallengeID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrChallengeInvalid):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "login challenge is invalid or expired"))
		case errors.Is(err, usecase.ErrOTPInvalid):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "one-time password is invalid"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to complete login"))
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse(outcome))
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Description Exchanges a refresh token for a new pair. Each token can be exchanged once.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body TokenRefreshRequest true "Refresh request"
// @Success 200 {object} AuthLoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid refresh payload"))
		return
	}

	outcome, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidRefreshToken):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "refresh token is invalid"))
		case errors.Is(err, usecase.ErrExpiredRefreshToken):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "refresh token has expired"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to refresh tokens"))
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse(outcome))
}

func loginResponse(outcome *usecase.LoginOutcome) AuthLoginResponse {
	return AuthLoginResponse{
		TokenPayload: newTokenPayload(outcome.Tokens),
		User:         newUserSummary(*outcome.User, ""),
	}
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid email or password"))
	case errors.Is(err, usecase.ErrUnconfirmedAccount):
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "account pending confirmation"))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to authenticate"))
	}
}

func clientIP(c *gin.Context) *string {
	ip := c.ClientIP()
	if ip == "" {
		return nil
	}
	return &ip
}
