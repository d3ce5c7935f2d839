package port

import (
	"context"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserConfirmed(ctx context.Context, event domain.UserConfirmedEvent) error
	PublishUserSignedIn(ctx context.Context, event domain.UserSignedInEvent) error
	PublishOAuthLinked(ctx context.Context, event domain.OAuthLinkedEvent) error
	PublishTwoFactorEnabled(ctx context.Context, event domain.TwoFactorEnabledEvent) error
	PublishTwoFactorDisabled(ctx context.Context, event domain.TwoFactorDisabledEvent) error
}
