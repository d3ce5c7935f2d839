package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// RegistrationHandler exposes endpoints for account sign-up and email confirmation.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/confirm", h.Confirm)
}

// Register godoc
// @Summary Register a new account
// @Description Creates the user with its profile account and mails a confirmation token.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/accounts/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Locale)
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr.Error()))
		case errors.Is(err, usecase.ErrPasswordPolicyViolation):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password does not meet requirements"))
		case errors.Is(err, usecase.ErrUsernameTaken):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "username already taken"))
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to register account"))
		}
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		User:                 newUserSummary(result.User, ""),
		Account:              newAccountSummary(result.Account),
		RequiresConfirmation: true,
		Message:              "confirmation required",
		ExpiresAt:            result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Confirm godoc
// @Summary Confirm a pending account
// @Description Redeems the emailed confirmation token and activates the account.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body ConfirmationRequest true "Confirmation request"
// @Success 200 {object} ConfirmationResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/accounts/confirm [post]
func (h *RegistrationHandler) Confirm(c *gin.Context) {
	var req ConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid confirmation payload"))
		return
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "confirmation token is required"))
		return
	}

	user, err := h.registration.Confirm(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrConfirmationTokenInvalid):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "confirmation token is invalid"))
		case errors.Is(err, usecase.ErrConfirmationTokenExpired):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "confirmation token has expired"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to confirm account"))
		}
		return
	}

	c.JSON(http.StatusOK, ConfirmationResponse{
		Message: "account confirmed",
		User:    newUserSummary(*user, ""),
	})
}
