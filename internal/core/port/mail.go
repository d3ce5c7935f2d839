package port

import (
	"context"
	"time"
)

// MailDispatcher delivers transactional account messages. Implementations
// must not log the raw token.
type MailDispatcher interface {
	SendConfirmation(ctx context.Context, email, token string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}
