package mail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// LoggingDispatcher logs outgoing messages instead of delivering them.
// Used in development when no SMTP relay is configured.
type LoggingDispatcher struct {
	log *zap.Logger
}

// NewLoggingDispatcher constructs the development dispatcher.
func NewLoggingDispatcher(log *zap.Logger) *LoggingDispatcher {
	return &LoggingDispatcher{log: log}
}

// SendConfirmation logs the confirmation dispatch.
func (d *LoggingDispatcher) SendConfirmation(_ context.Context, email, token string, expiresAt time.Time) error {
	d.log.Info("confirmation mail (not delivered)",
		zap.String("to", logger.MaskEmail(email)),
		zap.String("token", logger.MaskString(token)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// SendPasswordReset logs the password reset dispatch.
func (d *LoggingDispatcher) SendPasswordReset(_ context.Context, email, token string, expiresAt time.Time) error {
	d.log.Info("password reset mail (not delivered)",
		zap.String("to", logger.MaskEmail(email)),
		zap.String("token", logger.MaskString(token)),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

var _ port.MailDispatcher = (*LoggingDispatcher)(nil)
