package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/infra/security"
)

const (
	// AdminKey is the context key for the authenticated user's admin flag.
	AdminKey = "admin"

	bearerPrefix = "Bearer "
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the bearer token and stores the subject claims on the
// request context.
func RequireAuth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "missing authorization header"))
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "authorization header must use Bearer scheme"))
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			switch {
			case errors.Is(err, security.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "token expired"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, "invalid token"))
			}
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(AdminKey, claims.Admin)
		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.Subject
		}

		c.Next()
	}
}

// RequireAdmin aborts unless the authenticated user carries the admin claim.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !AuthenticatedAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "admin privileges required"))
			return
		}
		c.Next()
	}
}

// AuthenticatedUserID returns the subject stored by RequireAuth, empty when
// the request is unauthenticated.
func AuthenticatedUserID(c *gin.Context) string {
	if value, exists := c.Get(UserIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// AuthenticatedAdmin reports whether the authenticated user is an admin.
func AuthenticatedAdmin(c *gin.Context) bool {
	if value, exists := c.Get(AdminKey); exists {
		if admin, ok := value.(bool); ok {
			return admin
		}
	}
	return false
}
