package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs account.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":             event.UserID,
		"account_id":          event.AccountID,
		"username":            event.Username,
		"email":               event.Email,
		"locale":              event.Locale,
		"registered_at":       event.RegisteredAt,
		"registration_method": event.RegistrationMethod,
		"metadata":            event.Metadata,
	}
	p.logEvent("account.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserConfirmed logs account.user.confirmed events.
func (p *StubPublisher) PublishUserConfirmed(_ context.Context, event domain.UserConfirmedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"confirmed_at": event.ConfirmedAt,
		"method":       event.Method,
		"metadata":     event.Metadata,
	}
	p.logEvent("account.user.confirmed", event.UserID, event.ConfirmedAt, payload)
	return nil
}

// PublishUserSignedIn logs account.user.signed_in events.
func (p *StubPublisher) PublishUserSignedIn(_ context.Context, event domain.UserSignedInEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"sign_in_count": event.SignInCount,
		"ip_address":    event.IPAddress,
		"method":        event.Method,
		"signed_in_at":  event.SignedInAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("account.user.signed_in", event.UserID, event.SignedInAt, payload)
	return nil
}

// PublishOAuthLinked logs account.oauth.linked events.
func (p *StubPublisher) PublishOAuthLinked(_ context.Context, event domain.OAuthLinkedEvent) error {
	payload := map[string]any{
		"user_id":   event.UserID,
		"provider":  event.Provider,
		"uid":       event.UID,
		"new_user":  event.NewUser,
		"linked_at": event.LinkedAt,
		"metadata":  event.Metadata,
	}
	p.logEvent("account.oauth.linked", event.UserID, event.LinkedAt, payload)
	return nil
}

// PublishTwoFactorEnabled logs account.two_factor.enabled events.
func (p *StubPublisher) PublishTwoFactorEnabled(_ context.Context, event domain.TwoFactorEnabledEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"backup_codes": event.BackupCodes,
		"enabled_at":   event.EnabledAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("account.two_factor.enabled", event.UserID, event.EnabledAt, payload)
	return nil
}

// PublishTwoFactorDisabled logs account.two_factor.disabled events.
func (p *StubPublisher) PublishTwoFactorDisabled(_ context.Context, event domain.TwoFactorDisabledEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"disabled_at": event.DisabledAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("account.two_factor.disabled", event.UserID, event.DisabledAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
