package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// AdminUsersHandler serves the moderation-facing user listing.
type AdminUsersHandler struct {
	users *usecase.UserService
}

func NewAdminUsersHandler(users *usecase.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{users: users}
}

// RegisterRoutes binds admin endpoints. The group must be wrapped with
// RequireAuth and RequireAdmin.
func (h *AdminUsersHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.List)
	r.GET("/users/:id", h.Get)
}

// List godoc
// @Summary List users
// @Description Filters by composable scopes (recent, admins, confirmed, inactive), an email prefix, and a sign-in IP.
// @Tags Admin
// @Produce json
// @Param scope query string false "Comma-separated scopes"
// @Param email query string false "Email prefix"
// @Param ip query string false "Current or last sign-in IP"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} AdminUserListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/users [get]
func (h *AdminUsersHandler) List(c *gin.Context) {
	filter := port.UserFilter{
		EmailPrefix: strings.TrimSpace(c.Query("email")),
		SignInIP:    strings.TrimSpace(c.Query("ip")),
	}

	if raw := c.Query("scope"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			filter.Scopes = append(filter.Scopes, port.UserScope(name))
		}
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be an integer"))
			return
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "offset must be an integer"))
			return
		}
		filter.Offset = offset
	}

	page, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownScope) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	summaries := make([]UserSummary, 0, len(page.Users))
	for _, user := range page.Users {
		summaries = append(summaries, newUserSummary(user, ""))
	}

	c.JSON(http.StatusOK, AdminUserListResponse{
		Users:  summaries,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// Get godoc
// @Summary Fetch a single user
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserSummary
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/users/{id} [get]
func (h *AdminUsersHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load user"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user, ""))
}
