package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/transport/http/handlers"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
	Preferences   *usecase.PreferencesService
	TwoFactor     *usecase.TwoFactorService
	OAuth         *usecase.OAuthService
	Users         *usecase.UserService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config       *config.AppConfig
	Logger       *zap.Logger
	RateLimiter  *middleware.RateLimiter
	Metrics      *middleware.HTTPMetrics
	Services     ServiceSet
	TokenManager *security.TokenManager
	Database     DatabaseChecker
	Cache        CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	probes := make(map[string]handlers.ReadinessProbe, 2)
	if deps.Database != nil {
		probes["postgres"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		probes["redis"] = deps.Cache.HealthCheck
	}
	healthHandler := handlers.NewHealthHandler(probes)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		if deps.Services.Auth != nil {
			authHandler := handlers.NewAuthHandler(deps.Services.Auth)
			if rules := loginRateLimit(deps); rules != nil {
				authGroup.POST("/login", append(rules, authHandler.Login)...)
				authGroup.POST("/login/otp", append(rules, authHandler.CompleteOTP)...)
				authGroup.POST("/token/refresh", authHandler.Refresh)
			} else {
				authHandler.RegisterRoutes(authGroup)
			}
		}

		if deps.Services.OAuth != nil && deps.Services.Auth != nil {
			oauthHandler := handlers.NewOAuthHandler(deps.Services.OAuth, deps.Services.Auth)
			oauthHandler.RegisterRoutes(authGroup)
		}

		if deps.Services.PasswordReset != nil {
			passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset)
			if rules := passwordResetRateLimit(deps); rules != nil {
				authGroup.POST("/password/reset", append(rules, passwordHandler.Request)...)
				authGroup.POST("/password/reset/confirm", append(rules, passwordHandler.Confirm)...)
			} else {
				passwordHandler.RegisterRoutes(authGroup)
			}
		}

		if deps.Services.Registration != nil {
			accountsGroup := api.Group("/accounts")
			if rules := registerRateLimit(deps); rules != nil {
				accountsGroup.Use(rules...)
			}
			registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
			registrationHandler.RegisterRoutes(accountsGroup)
		}

		if deps.TokenManager != nil {
			authed := api.Group("")
			authed.Use(middleware.RequireAuth(deps.TokenManager))

			if deps.Services.Preferences != nil {
				profileHandler := handlers.NewProfileHandler(deps.Services.Preferences, deps.Services.OAuth)
				profileHandler.RegisterRoutes(authed)
			}

			if deps.Services.TwoFactor != nil {
				twoFactorHandler := handlers.NewTwoFactorHandler(deps.Services.TwoFactor)
				twoFactorHandler.RegisterRoutes(authed)
			}

			if deps.Services.Users != nil {
				adminGroup := api.Group("/admin")
				adminGroup.Use(middleware.RequireAuth(deps.TokenManager), middleware.RequireAdmin())
				adminHandler := handlers.NewAdminUsersHandler(deps.Services.Users)
				adminHandler.RegisterRoutes(adminGroup)
			}
		}
	}

	return r
}

func loginRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.Config == nil {
		return nil
	}
	return ipRateLimit(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, time.Minute)
}

func passwordResetRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.Config == nil {
		return nil
	}
	return ipRateLimit(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, time.Hour)
}

func registerRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.Config == nil {
		return nil
	}
	return ipRateLimit(deps, "register_ip", deps.Config.RateLimit.RegisterMaxAttempts, time.Hour)
}

func ipRateLimit(deps Dependencies, name string, limit int, fallbackWindow time.Duration) []gin.HandlerFunc {
	if deps.RateLimiter == nil || limit <= 0 {
		return nil
	}

	window := fallbackWindow
	if deps.Config != nil && deps.Config.RateLimit.WindowDuration > 0 {
		window = deps.Config.RateLimit.WindowDuration
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
